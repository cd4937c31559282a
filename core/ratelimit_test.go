package core

import (
	"testing"
	"time"
)

func TestRateLimiterGatesWithinInterval(t *testing.T) {
	r := NewRateLimiter(time.Hour)

	if !r.Allow() {
		t.Fatal("first action denied")
	}
	for i := 0; i < 3; i++ {
		if r.Allow() {
			t.Fatal("action allowed inside the interval")
		}
	}
}

func TestRateLimiterZeroIntervalNeverGates(t *testing.T) {
	r := NewRateLimiter(0)
	for i := 0; i < 3; i++ {
		if !r.Allow() {
			t.Fatalf("action %d denied with limiting disabled", i)
		}
	}
}

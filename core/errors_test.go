package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestResolutionErrorWrapping(t *testing.T) {
	err := NewResolutionError("code source", "locationNoFragString", "Ljava/lang/String;", ErrFieldMissing)

	if !errors.Is(err, ErrFieldMissing) {
		t.Error("ResolutionError does not unwrap to its cause")
	}

	var re *ResolutionError
	if !errors.As(err, &re) {
		t.Fatal("errors.As failed to find ResolutionError")
	}
	if re.Object != "code source" || re.Field != "locationNoFragString" {
		t.Errorf("fields lost: %+v", re)
	}

	msg := err.Error()
	if msg == "" {
		t.Error("empty error message")
	}
}

func TestResolutionErrorThroughWrapping(t *testing.T) {
	inner := NewResolutionError("protection domain", "codesource", "Ljava/security/CodeSource;", ErrFieldType)
	wrapped := fmt.Errorf("resolving entity: %w", inner)

	if !IsResolutionError(wrapped) {
		t.Error("wrapped ResolutionError not recognized")
	}
	if IsPrecondition(wrapped) {
		t.Error("resolution error misclassified as precondition violation")
	}
}

func TestIsPrecondition(t *testing.T) {
	err := fmt.Errorf("assembling record: %w", ErrNoFinalizer)
	if !IsPrecondition(err) {
		t.Error("wrapped ErrNoFinalizer not recognized")
	}
	if IsResolutionError(err) {
		t.Error("precondition error misclassified as resolution failure")
	}
}

func TestIsConfigurationError(t *testing.T) {
	if !IsConfigurationError(fmt.Errorf("x: %w", ErrInvalidConfiguration)) {
		t.Error("ErrInvalidConfiguration not recognized")
	}
	if !IsConfigurationError(fmt.Errorf("x: %w", ErrMissingConfiguration)) {
		t.Error("ErrMissingConfiguration not recognized")
	}
	if IsConfigurationError(ErrNoFinalizer) {
		t.Error("unrelated error classified as configuration error")
	}
}

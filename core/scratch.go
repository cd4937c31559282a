package core

// Scratch is a reusable byte buffer lent to a FieldAccessor for transient
// string extraction. A Scratch is scoped to a single resolve call: the
// resolver acquires it before the first field read and releases it on every
// exit path, so accessors must not retain it or the slices it hands out.
type Scratch struct {
	buf []byte
}

// NewScratch creates a Scratch with the given initial capacity.
func NewScratch(capacity int) *Scratch {
	return &Scratch{buf: make([]byte, 0, capacity)}
}

// Grab returns a slice of length n backed by the scratch buffer, growing the
// buffer when needed. The slice is valid until Reset.
func (s *Scratch) Grab(n int) []byte {
	if cap(s.buf)-len(s.buf) < n {
		grown := make([]byte, len(s.buf), 2*(len(s.buf)+n))
		copy(grown, s.buf)
		s.buf = grown
	}
	start := len(s.buf)
	s.buf = s.buf[: start+n : start+n]
	return s.buf[start:]
}

// Len returns the number of bytes currently handed out.
func (s *Scratch) Len() int { return len(s.buf) }

// Reset discards all handed-out slices, keeping the underlying capacity.
func (s *Scratch) Reset() { s.buf = s.buf[:0] }

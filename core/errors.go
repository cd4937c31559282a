package core

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for comparison using errors.Is()
// These are generic errors that can be wrapped with additional context
var (
	// Precondition errors
	ErrNoFinalizer = errors.New("entity has no finalizer")

	// Resolution errors
	ErrFieldMissing = errors.New("field not found")
	ErrFieldType    = errors.New("field signature mismatch")

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingConfiguration = errors.New("missing required configuration")

	// State errors
	ErrNotInitialized   = errors.New("not initialized")
	ErrAlreadyStarted   = errors.New("already started")
	ErrTransportClosed  = errors.New("transport closed")
	ErrConnectionFailed = errors.New("connection failed")
)

// ResolutionError reports a structural failure while reading a field from a
// runtime object: the field is missing or its signature does not match.
// It indicates an accessor/runtime mismatch rather than a legitimate
// absence, so callers should log it rather than silently discard it.
// It implements the error interface and supports error wrapping.
type ResolutionError struct {
	Object    string // Description of the receiver (e.g., "protection domain")
	Field     string // Field name that failed to resolve
	Signature string // Expected type signature
	Err       error  // Underlying error for wrapping
}

// Error returns the string representation of the error
func (e *ResolutionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("resolve %s.%s (%s): %v", e.Object, e.Field, e.Signature, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "resolution error"
}

// Unwrap returns the underlying error for use with errors.Is/As
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// NewResolutionError creates a ResolutionError for a failed field read
func NewResolutionError(object, field, signature string, err error) *ResolutionError {
	return &ResolutionError{
		Object:    object,
		Field:     field,
		Signature: signature,
		Err:       err,
	}
}

// IsResolutionError checks if an error is a structural metadata-resolution
// failure. Emission paths degrade on these rather than aborting.
func IsResolutionError(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re) ||
		errors.Is(err, ErrFieldMissing) ||
		errors.Is(err, ErrFieldType)
}

// IsPrecondition checks if an error is an internal invariant violation
// upstream of the caller. These are not recoverable by retrying.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNoFinalizer)
}

// IsConfigurationError checks if an error is configuration-related
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrMissingConfiguration)
}

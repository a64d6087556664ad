package apperr

import (
	"errors"
	"fmt"
)

// Error kinds shared by the models, services and the web layer.
var (
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrNotSubscribed    = errors.New("not subscribed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
)

// CapacityError is returned when a course or session is already full.
type CapacityError struct {
	Message string
}

func (e *CapacityError) Error() string { return e.Message }

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

func CourseFull() error  { return &CapacityError{Message: "This course is full"} }
func SessionFull() error { return &CapacityError{Message: "This session is full"} }

// ValidationError is raised at save time; the write is not persisted.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(code, format string, args ...any) error {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Denied(reason string) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, reason)
}

// IsDomain reports whether err is a business-rule rejection rather than an
// infrastructure failure.
func IsDomain(err error) bool {
	var ve *ValidationError
	return errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrNotSubscribed) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrNotFound) ||
		errors.As(err, &ve)
}

package upload

import (
	"errors"
	"fmt"
)

// Sentinel kinds for upload failures. Anything not matching one of these is
// an unexpected fault.
var (
	ErrInvalidJSON     = errors.New("invalid JSON")
	ErrNoData          = errors.New("no data received")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrPayloadTooLarge = errors.New("payload too large")
	errEmptyBody       = errors.New("empty request body")
)

// Error annotates a failure with the operation that produced it and its kind.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind returns an error of the given kind without a cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind returns an error of the given kind wrapping cause.
func WrapKind(op string, kind, cause error) error {
	return &Error{Op: op, Kind: kind, Err: cause}
}

// Detail returns the underlying cause message for a kind error, or the full
// message for any other error.
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}

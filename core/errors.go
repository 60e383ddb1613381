package core

import "github.com/pkg/errors"

// FieldError reports a request field that failed validation.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError carries field-level failures that should reach the client
// as a bad request rather than be logged as a server fault.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err *ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	if len(err.Fields) > 0 {
		return err.Fields[0].Error
	}
	return "invalid input"
}

func (err *ValidationError) Unwrap() error { return err.Err }

// shutdownError marks integrity faults that should stop the process instead
// of being returned as an ordinary request error.
type shutdownError struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdownError{message: msg}
}

func (err *shutdownError) Error() string { return err.message }

// IsShutdown reports whether err (or its cause) asks for a graceful stop.
func IsShutdown(err error) bool {
	var serr *shutdownError
	return errors.As(err, &serr)
}

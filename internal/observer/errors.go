package observer

import "fmt"

// MissingFieldError reports a snapshot that lacks a field an observer
// depends on. It signals a bug in the caller and is never retried.
type MissingFieldError struct {
	Field Field
}

func (e *MissingFieldError) Error() string {
	if e.Field != "" {
		return "snapshot missing field: " + string(e.Field)
	}
	return "snapshot missing field"
}

func (e *MissingFieldError) Is(target error) bool {
	_, ok := target.(*MissingFieldError)
	return ok
}

// ErrMissingField matches any *MissingFieldError with errors.Is.
var ErrMissingField = &MissingFieldError{}

// PanicError carries a panic recovered from an observer's Update or Close.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("observer panicked: %v", e.Value)
}

// ConfigError reports an invalid observer construction parameter.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid observer config: " + e.Field + " " + e.Reason
}

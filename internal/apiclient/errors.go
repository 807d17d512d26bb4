package apiclient

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a call to the backend failed.
type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"
	KindStatus     ErrorKind = "status"
	KindDecode     ErrorKind = "decode"
	KindValidation ErrorKind = "validation"
)

// Error is returned by every Client method. Message is safe to show to the
// caregiver.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Message extracts the user facing text of err.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Error inesperado al obtener los datos"
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}

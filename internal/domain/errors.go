package domain

import "errors"

// Code classifies a DomainError. The HTTP layer maps codes to status codes.
type Code string

const (
	ErrCodeValidation    Code = "VALIDATION_ERROR"
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeAlreadyExists Code = "ALREADY_EXISTS"
	ErrCodeUnauthorized  Code = "UNAUTHORIZED"
	ErrCodeForbidden     Code = "FORBIDDEN"
	ErrCodeInternalError Code = "INTERNAL_ERROR"
)

// DomainError is an error the API can report to a client. Message is safe
// to expose; Err carries the internal cause, if any.
type DomainError struct {
	Code    Code
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is matches another DomainError with the same code and message, so a
// sentinel still matches after Wrap attached a cause to a copy of it.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code && t.Message == e.Message
}

// Wrap returns a copy of e carrying cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Err: cause}
}

func NewDomainError(code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func NewDomainErrorWithCause(code Code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the first DomainError in err's chain, or
// ErrCodeInternalError when there is none.
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternalError
}

var (
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrEmptySearchText      = NewDomainError(ErrCodeValidation, "search text must not be empty")

	ErrNoteNotFound       = NewDomainError(ErrCodeNotFound, "note not found")
	ErrUserNotFound       = NewDomainError(ErrCodeNotFound, "user not found")
	ErrAPIKeyNotFound     = NewDomainError(ErrCodeNotFound, "api key not found")
	ErrAttachmentNotFound = NewDomainError(ErrCodeNotFound, "note has no attachment")

	ErrUserAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "user already exists")

	ErrAPIKeyRevoked = NewDomainError(ErrCodeUnauthorized, "api key has been revoked")
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")

	ErrStorageNotConfigured = NewDomainError(ErrCodeInternalError, "attachment storage is not configured")
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "storage operation failed")
)

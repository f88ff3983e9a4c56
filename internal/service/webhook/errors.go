package webhook

import "net/http"

type ErrorCode string

const (
	ErrorCodeInvalidSignature ErrorCode = "INVALID_SIGNATURE"
	ErrorCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrorCodeSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"
	ErrorCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// Status is the HTTP status each code is answered with.
func (c ErrorCode) Status() int {
	switch c {
	case ErrorCodeInvalidSignature:
		return http.StatusUnauthorized
	case ErrorCodeValidation:
		return http.StatusBadRequest
	case ErrorCodeSessionNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

package httperr

import "errors"

// Kind classifies a business error for the caller.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInsufficient Kind = "insufficient"
	KindExpired      Kind = "expired"
	KindForbidden    Kind = "forbidden"
)

// BusinessError is a typed, user-displayable failure. It is a comparable
// value, so package-level sentinels work with errors.Is.
type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
}

func (e BusinessError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

// WithMessage returns a copy carrying a request-specific message. Use
// IsBusiness(err, code) rather than errors.Is to match such copies.
func (e BusinessError) WithMessage(msg string) BusinessError {
	e.Message = msg
	return e
}

func New(kind Kind, code, message string) BusinessError {
	return BusinessError{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) BusinessError {
	return New(KindValidation, code, message)
}

func NotFoundErr(code, message string) BusinessError {
	return New(KindNotFound, code, message)
}

func Conflict(code, message string) BusinessError {
	return New(KindConflict, code, message)
}

func Insufficient(code, message string) BusinessError {
	return New(KindInsufficient, code, message)
}

func Expired(code, message string) BusinessError {
	return New(KindExpired, code, message)
}

func Forbidden(code, message string) BusinessError {
	return New(KindForbidden, code, message)
}

func ErrBusiness(code string) error {
	return BusinessError{Kind: KindValidation, Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func As(err error) (BusinessError, bool) {
	var be BusinessError
	ok := errors.As(err, &be)
	return be, ok
}

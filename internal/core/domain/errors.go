package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so callers can map them to a response
// without parsing messages. Every kind is recoverable; a failed request
// never takes the server down.
type ErrorKind int

const (
	// KindValidation covers malformed or missing input.
	KindValidation ErrorKind = iota
	// KindNotFound covers unknown process, part or location ids.
	KindNotFound
	// KindInsufficientStock covers missing or too-low component stock.
	KindInsufficientStock
	// KindConfiguration covers a missing or invalid default output location.
	KindConfiguration
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Error is a kind-classified error. Mutation-bearing kinds guarantee the
// transaction was rolled back before the error is returned.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err, if it carries one.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InsufficientStockf(format string, args ...any) *Error {
	return &Error{Kind: KindInsufficientStock, Message: fmt.Sprintf(format, args...)}
}

func Configurationf(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

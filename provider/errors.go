package provider

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an operation failed.
type ErrorKind int

const (
	// KindValidation: the caller's parameters were missing or malformed.
	KindValidation ErrorKind = iota + 1
	// KindUnsupported: the operation is legal but the provider cannot do it.
	KindUnsupported
	// KindBackend: the backend call itself failed.
	KindBackend
	// KindCompose: the read phase of a reply failed, nothing was sent.
	KindCompose
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnsupported:
		return "unsupported"
	case KindBackend:
		return "backend"
	case KindCompose:
		return "compose"
	default:
		return "unknown"
	}
}

// ErrBackendUnavailable is wrapped when a provider has no initialised adapter.
var ErrBackendUnavailable = errors.New("backend not configured")

// Error is the failure half of an operation outcome.
type Error struct {
	Kind     ErrorKind
	Op       Operation
	Provider Kind
	Detail   string
	Err      error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String() + " error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validationf builds a validation failure naming the offending field.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

// Unsupported reports op as not implemented for k.
func Unsupported(op Operation, k Kind) *Error {
	return &Error{
		Kind:     KindUnsupported,
		Op:       op,
		Provider: k,
		Detail:   fmt.Sprintf("%s not implemented for %s", op, k),
	}
}

// Backend wraps an adapter fault. The detail is the backend's own message.
func Backend(op Operation, k Kind, err error) *Error {
	return &Error{Kind: KindBackend, Op: op, Provider: k, Detail: err.Error(), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

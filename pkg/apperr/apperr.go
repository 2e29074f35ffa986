package apperr

import "errors"

// Kind classifies an error for callers and the transport layer
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindConflict
	KindInvariant
)

// String returns the wire code for the kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindUnauthorized:
		return "FORBIDDEN"
	case KindConflict:
		return "CONFLICT"
	case KindInvariant:
		return "INVARIANT_VIOLATION"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is a typed application error. Packages declare sentinel values and
// wrap them with fmt.Errorf("...: %w", ErrX) to add context.
type Error struct {
	Kind      Kind
	Message   string
	Retryable bool
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string) *Error { return New(KindValidation, message) }
func NotFound(message string) *Error { return New(KindNotFound, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func Conflict(message string) *Error { return New(KindConflict, message) }
func Invariant(message string) *Error { return New(KindInvariant, message) }

// RetryableConflict creates a conflict the caller may retry as-is, such as a
// concurrent write collision.
func RetryableConflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message, Retryable: true}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsRetryable reports whether err carries a retryable *Error
func IsRetryable(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Retryable
}

// Is reports whether err is of the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

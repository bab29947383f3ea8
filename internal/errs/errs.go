package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies pipeline errors so callers can branch on failure class
// instead of matching message strings.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidArgument
	KindProviderUnavailable
	KindUpstreamFailure
	KindSerializationFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindProviderUnavailable:
		return "ProviderUnavailable"
	case KindUpstreamFailure:
		return "UpstreamFailure"
	case KindSerializationFailure:
		return "SerializationFailure"
	default:
		return "Unknown"
	}
}

// Error is the typed error carried across pipeline stages.
type Error struct {
	Kind    Kind
	Message string
	Context map[string]any
	Cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Context: make(map[string]any),
	}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

func Wrap(err error, kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Context: make(map[string]any),
		Cause:   err,
	}
}

func Wrapf(err error, kind Kind, format string, args ...any) *Error {
	return Wrap(err, kind, fmt.Sprintf(format, args...))
}

func (e *Error) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Kind.String(), e.Message))

	if len(e.Context) > 0 {
		var ctxParts []string
		for k, v := range e.Context {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("context: %s", strings.Join(ctxParts, ", ")))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) WithContext(key string, value any) *Error {
	e.Context[key] = value
	return e
}

// NotFound reports a missing file or resource.
func NotFound(format string, args ...any) *Error {
	return Newf(KindNotFound, format, args...)
}

// InvalidArgument reports rejected caller input.
func InvalidArgument(format string, args ...any) *Error {
	return Newf(KindInvalidArgument, format, args...)
}

// ProviderUnavailable reports a provider that cannot be used because its
// credentials are not configured.
func ProviderUnavailable(format string, args ...any) *Error {
	return Newf(KindProviderUnavailable, format, args...)
}

// UpstreamFailure reports a provider or subprocess call that was attempted
// and failed.
func UpstreamFailure(cause error, format string, args ...any) *Error {
	return Wrapf(cause, KindUpstreamFailure, format, args...)
}

// SerializationFailure reports malformed artifact content.
func SerializationFailure(cause error, format string, args ...any) *Error {
	return Wrapf(cause, KindSerializationFailure, format, args...)
}

// KindOf returns the Kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

package shared

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed catalog call.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNetwork
	KindParsing
	KindValidation
	KindOriginAPI
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindParsing:
		return "parsing"
	case KindValidation:
		return "validation"
	case KindOriginAPI:
		return "origin_api"
	default:
		return "unknown"
	}
}

// Sentinels matched by [errors.Is] against any [*Error] of the corresponding kind.
var (
	ErrNetwork    = errors.New("network error")
	ErrParsing    = errors.New("parsing error")
	ErrValidation = errors.New("validation error")
	ErrOriginAPI  = errors.New("apple music API error")
	ErrUnknown    = errors.New("unknown error")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindParsing:
		return ErrParsing
	case KindValidation:
		return ErrValidation
	case KindOriginAPI:
		return ErrOriginAPI
	default:
		return ErrUnknown
	}
}

// OriginErrorSource points at the request element that caused an [OriginError].
type OriginErrorSource struct {
	Parameter string `json:"parameter,omitempty"`
	Pointer   string `json:"pointer,omitempty"`
}

// OriginError is a single entry of the Apple Music error envelope, kept exactly as the service returned it.
type OriginError struct {
	ID     string             `json:"id"`
	About  string             `json:"about,omitempty"`
	Status string             `json:"status"`
	Code   string             `json:"code"`
	Title  string             `json:"title"`
	Detail string             `json:"detail,omitempty"`
	Source *OriginErrorSource `json:"source,omitempty"`
	Meta   map[string]string  `json:"meta,omitempty"`
}

// OriginErrorEnvelope is the {"errors": [...]} body Apple Music sends on failure.
type OriginErrorEnvelope struct {
	Errors []OriginError `json:"errors"`
}

// Error is the classified failure of a catalog call.
//
// Exactly one of Origin (for [KindOriginAPI]) or Message is meaningful; Err holds the underlying cause when there is one.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int
	Err     error

	// Origin is the primary (first) entry of the service's error envelope.
	Origin *OriginError
	// OriginErrors holds every entry of the envelope, Origin included.
	OriginErrors []OriginError
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.sentinel().Error())

	if e.Kind == KindOriginAPI && e.Origin != nil {
		fmt.Fprintf(&b, ": %s (code %s, status %s)", e.Origin.Title, e.Origin.Code, e.Origin.Status)
		if e.Origin.Detail != "" {
			b.WriteString(": " + e.Origin.Detail)
		}
		return b.String()
	}

	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the cause to [errors.Is] and [errors.As].
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

func NewNetworkError(message string, cause error) *Error {
	return &Error{Kind: KindNetwork, Message: message, Err: cause}
}

func NewParsingError(message string, cause error) *Error {
	return &Error{Kind: KindParsing, Message: message, Err: cause}
}

func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewOriginAPIError builds a [KindOriginAPI] error from a non-empty envelope; the first entry is primary.
func NewOriginAPIError(status int, errs []OriginError) *Error {
	primary := errs[0]
	return &Error{Kind: KindOriginAPI, Status: status, Origin: &primary, OriginErrors: errs}
}

func NewUnknownError(status int, cause error) *Error {
	return &Error{Kind: KindUnknown, Status: status, Message: fmt.Sprintf("unexpected status %d", status), Err: cause}
}

// KindOf returns the [ErrorKind] of err, or [KindUnknown] when err is not a classified [*Error].
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

package extraction

import (
	"errors"
	"fmt"
)

// Kind classifies an extraction failure
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindUpstreamUnavailable
	KindResourceIDNotFound
	KindMalformedPayload
)

// Sentinels matched by errors.Is against any *Error of the same kind
var (
	ErrInvalidInput        = errors.New("invalid map code")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrResourceIDNotFound  = errors.New("resource id not found")
	ErrMalformedPayload    = errors.New("malformed upstream payload")
)

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindUpstreamUnavailable:
		return ErrUpstreamUnavailable
	case KindResourceIDNotFound:
		return ErrResourceIDNotFound
	case KindMalformedPayload:
		return ErrMalformedPayload
	default:
		return nil
	}
}

// String returns the snake_case kind name used in logs and metrics
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindResourceIDNotFound:
		return "resource_id_not_found"
	case KindMalformedPayload:
		return "malformed_payload"
	default:
		return "unknown"
	}
}

// Error is returned by every Client failure.
// StatusCode is the upstream HTTP status, 0 when no response was received.
type Error struct {
	Kind       Kind
	StatusCode int
	URL        string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.URL != "" {
		msg += ": " + e.URL
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of e's kind
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the kind of an extraction error, 0 for anything else
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

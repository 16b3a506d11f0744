// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resilience provides the failure-handling primitives shared by the
// service clients and the lookup orchestrator: a typed service-error
// taxonomy, retry with exponential backoff, and a per-service circuit
// breaker.
package resilience

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a service error for retry and circuit-breaker decisions.
type Kind int

const (
	// KindNetwork covers connectivity failures (refused, reset, DNS).
	KindNetwork Kind = iota

	// KindTimeout covers request deadline expiry.
	KindTimeout

	// KindRateLimit covers HTTP 429 responses. Never retried.
	KindRateLimit

	// KindServiceUnavailable covers 5xx responses and open circuits.
	KindServiceUnavailable

	// KindAuthentication covers 401/403 responses and missing keys. Never retried.
	KindAuthentication

	// KindCache covers local cache I/O problems. Swallowed at the cache layer.
	KindCache

	// KindParse covers malformed service responses.
	KindParse
)

// String returns the kind name used in logs and error text.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindRateLimit:
		return "rate_limit"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindAuthentication:
		return "authentication"
	case KindCache:
		return "cache"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error is the one service-error type every failure in the lookup path
// reduces to. Classification happens once at the client boundary; everything
// above branches on Kind.
type Error struct {
	Kind    Kind
	Service string
	Msg     string

	// RetryAfter carries the server's Retry-After hint for rate-limit
	// errors. Zero when the server sent none.
	RetryAfter time.Duration

	Err error
}

func (e *Error) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("%s: %s: %s", e.Service, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified service error.
func NewError(kind Kind, service, msg string) *Error {
	return &Error{Kind: kind, Service: service, Msg: msg}
}

// WrapError builds a classified service error around an underlying cause.
func WrapError(kind Kind, service string, err error) *Error {
	return &Error{Kind: kind, Service: service, Msg: err.Error(), Err: err}
}

// KindOf extracts the kind of err. Unclassified errors report ok=false.
func KindOf(err error) (Kind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Retryable reports whether err is worth another attempt. Network, timeout,
// and service-unavailable failures are transient; rate-limit and
// authentication failures fail fast, and unclassified errors propagate
// immediately.
func Retryable(err error) bool {
	switch k, ok := KindOf(err); {
	case !ok:
		return false
	case k == KindNetwork, k == KindTimeout, k == KindServiceUnavailable:
		return true
	default:
		return false
	}
}

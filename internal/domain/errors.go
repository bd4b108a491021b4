package domain

import (
	"errors"
	"time"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrRateLimited  = errors.New("rate limited")
	ErrLocked       = errors.New("account locked")
)

// RetryAfterError carries the client backoff hint for rate-limit and lockout
// rejections. Reason is ErrRateLimited or ErrLocked so errors.Is still works.
type RetryAfterError struct {
	Reason     error
	Message    string
	RetryAfter time.Duration
}

func (e *RetryAfterError) Error() string { return e.Message }
func (e *RetryAfterError) Unwrap() error { return e.Reason }

// RetryAfterSeconds rounds up so a client that waits the advertised number of
// seconds is never rejected again by the same guard.
func (e *RetryAfterError) RetryAfterSeconds() int {
	secs := int(e.RetryAfter / time.Second)
	if e.RetryAfter%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}

// PinMismatchError is returned on a wrong PIN while the account is not yet
// locked. The message is deliberately generic (no username enumeration).
type PinMismatchError struct {
	AttemptsRemaining int
}

func (e *PinMismatchError) Error() string { return "invalid username or PIN" }
func (e *PinMismatchError) Unwrap() error { return ErrUnauthorized }

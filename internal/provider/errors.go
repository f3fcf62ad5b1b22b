package provider

import (
	"errors"
	"math/rand"
	"time"
)

// Disposition tags a provider error as Retryable or Terminal (spec.md
// §4.9, §7).
type Disposition int

const (
	Terminal Disposition = iota
	Retryable
)

// Error wraps a provider error with its disposition.
type Error struct {
	Disposition Disposition
	Err         error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// NewRetryable wraps err as a Retryable provider Error.
func NewRetryable(err error) *Error { return &Error{Disposition: Retryable, Err: err} }

// NewTerminal wraps err as a Terminal provider Error.
func NewTerminal(err error) *Error { return &Error{Disposition: Terminal, Err: err} }

// IsRetryable reports whether err (possibly wrapped) is a Retryable
// provider Error.
func IsRetryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Disposition == Retryable
	}
	return false
}

// BackoffPolicy configures the retry/backoff loop (spec.md §4.9).
type BackoffPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultBackoffPolicy matches the teacher's upstream-retry shape
// (internal/mcp.Proxy's fixed delay ladder), generalized to exponential
// backoff with jitter per spec.md §4.9.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{MaxAttempts: 5, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second}
}

// Delay returns the backoff delay for the given 1-indexed attempt
// number, with up to 50% positive jitter.
func (p BackoffPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if d > p.MaxDelay || d <= 0 {
		d = p.MaxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(d) / 2))
	return d + jitter
}

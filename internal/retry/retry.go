// Package retry wraps transient API failures with exponential backoff.
//
// Gmail, OpenAI and Anthropic calls all fail the same way in practice:
// rate limits (429) and server errors (5xx) are worth retrying, while
// auth and client errors (401, 403, 404) never recover on their own.
// This package centralizes that classification so callers only describe
// the operation.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy describes how an operation is retried.
type Policy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	Jitter          float64
}

// DefaultPolicy suits Gmail API and filesystem-adjacent calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		Jitter:          0.1,
	}
}

// AIPolicy suits LLM and TTS calls, which rate-limit harder and longer.
func AIPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 2 * time.Second,
		MaxInterval:     120 * time.Second,
		Multiplier:      2.0,
		Jitter:          0.1,
	}
}

// Do runs op under the given policy until it succeeds, returns a permanent
// error, or the attempt budget is exhausted. Context cancellation stops
// retrying immediately.
func Do[T any](ctx context.Context, policy Policy, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.InitialInterval
	b.MaxInterval = policy.MaxInterval
	b.Multiplier = policy.Multiplier
	b.RandomizationFactor = policy.Jitter

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(policy.MaxAttempts),
	)
}

// Permanent marks err as non-retryable, aborting the retry loop.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// After marks err as retryable no earlier than the given delay, typically
// taken from a Retry-After header. The original error stays in the chain
// so callers still see it after the attempt budget is exhausted.
func After(err error, delay time.Duration) error {
	if delay <= 0 {
		return err
	}
	return &retryAfterError{err: err, after: &backoff.RetryAfterError{Duration: delay}}
}

type retryAfterError struct {
	err   error
	after *backoff.RetryAfterError
}

func (e *retryAfterError) Error() string { return e.err.Error() }

func (e *retryAfterError) Unwrap() []error { return []error{e.err, e.after} }

// RetryableStatus reports whether an HTTP status code indicates a
// transient failure.
func RetryableStatus(code int) bool {
	switch {
	case code == http.StatusTooManyRequests:
		return true
	case code == http.StatusRequestTimeout:
		return true
	case code >= 500:
		return true
	default:
		return false
	}
}

// ClassifyHTTP wraps err according to its HTTP status code: retryable
// statuses pass through unchanged so the backoff loop retries them,
// everything else in the 4xx range becomes permanent.
func ClassifyHTTP(code int, err error) error {
	if err == nil {
		return nil
	}
	if RetryableStatus(code) {
		return err
	}
	if code >= 400 && code < 500 {
		return Permanent(err)
	}
	return err
}

// ClassifyError inspects a non-HTTP error. Network-level failures
// (timeouts, connection resets, DNS) are retryable; context
// cancellation and anything unrecognized is permanent.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Permanent(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return err
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection reset", "connection refused", "broken pipe", "no such host", "timeout", "temporarily unavailable"} {
		if strings.Contains(msg, s) {
			return err
		}
	}
	return Permanent(err)
}

// ParseRetryAfter reads a Retry-After header value, accepting both
// delay-seconds and HTTP-date forms. Returns 0 when absent or malformed.
func ParseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	var secs int
	if _, err := fmt.Sscanf(header, "%d", &secs); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

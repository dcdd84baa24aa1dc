// Package retry runs an operation with bounded attempts and exponential backoff
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"
)

// Policy bounds how often and how patiently an operation is retried
type Policy struct {
	MaxAttempts int           // total attempts including the first; values < 1 mean 1
	BaseDelay   time.Duration // wait before the second attempt
	MaxDelay    time.Duration // cap for any single wait; 0 means uncapped
}

// DefaultPolicy waits 1s, then 2s, between three attempts
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
	MaxDelay:    8 * time.Second,
}

// Delay returns the wait after the given failed attempt (1-based)
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	backoff := time.Duration(math.Pow(2, float64(attempt-1))) * p.BaseDelay
	if p.MaxDelay > 0 && (backoff > p.MaxDelay || backoff < 0) {
		return p.MaxDelay
	}
	return backoff
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// ForStatus marks err permanent when an HTTP status says retrying cannot help:
// every 4xx except 408 and 429
func ForStatus(status int, err error) error {
	if status >= 400 && status < 500 && status != http.StatusRequestTimeout && status != http.StatusTooManyRequests {
		return Permanent(err)
	}
	return err
}

// ExhaustedError is returned once every attempt has failed
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

type options struct {
	sleep   func(ctx context.Context, d time.Duration) error
	onRetry func(attempt int, err error, next time.Duration)
}

// Option customises Do
type Option func(*options)

// WithSleep replaces the wait between attempts (tests use a no-op)
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *options) { o.sleep = sleep }
}

// WithOnRetry registers a callback invoked before each wait
func WithOnRetry(fn func(attempt int, err error, next time.Duration)) Option {
	return func(o *options) { o.onRetry = fn }
}

// Do runs op until it succeeds, returns a Permanent error, the policy is exhausted
// or ctx is done. A permanent error is returned unwrapped from its marker.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error, opts ...Option) error {
	o := options{sleep: sleepContext}
	for _, opt := range opts {
		opt(&o)
	}

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%w (last error: %v)", err, lastErr)
			}
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}

		if attempt == attempts {
			break
		}

		next := p.Delay(attempt)
		if o.onRetry != nil {
			o.onRetry(attempt, lastErr, next)
		}
		if err := o.sleep(ctx, next); err != nil {
			return fmt.Errorf("%w (last error: %v)", err, lastErr)
		}
	}

	return &ExhaustedError{Attempts: attempts, Err: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

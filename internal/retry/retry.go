package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultDelay       = 5 * time.Second
)

// ErrRemoteCallExhausted is matched (errors.Is) by every error returned from Do
// after the final attempt failed.
var ErrRemoteCallExhausted = errors.New("remote call exhausted")

// ExhaustedError carries the last failure of a call that failed on every attempt.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrRemoteCallExhausted, e.Err}
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy is a bounded, fixed-delay retry policy. Every failure is retried until
// MaxAttempts is reached; error contents are never inspected.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	// Diagnostics receives one line per failed attempt that is going to be
	// retried. Callers point it at stderr so stdout stays parseable.
	Diagnostics io.Writer
	Logger      *slog.Logger
	Sleep       SleepFunc
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Do invokes op until it succeeds or the policy runs out of attempts.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T

	maxAttempts := p.attempts()
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	for attempt := 1; ; attempt++ {
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		if attempt >= maxAttempts {
			return zero, &ExhaustedError{Attempts: attempt, Err: err}
		}

		if p.Diagnostics != nil {
			fmt.Fprintf(p.Diagnostics, "attempt %d/%d failed, waiting %s\n", attempt, maxAttempts, p.Delay)
		}
		if p.Logger != nil {
			p.Logger.Debug("remote call attempt failed",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", maxAttempts),
				slog.Duration("delay", p.Delay),
				slog.Any("error", err))
		}

		if err := sleep(ctx, p.Delay); err != nil {
			return zero, err
		}
	}
}

// Run is Do for operations without a result value.
func Run(ctx context.Context, p Policy, op func(context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// SleepContext waits for d, returning early with ctx.Err() on cancellation.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

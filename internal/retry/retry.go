// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retry provides the single backoff policy wrapped around every
// Recipe Source call.
package retry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseDelay is the first backoff step when a Policy sets none.
// Tests override this to avoid real sleeps.
var DefaultBaseDelay = 2 * time.Second

// Policy retries a failed call up to MaxRetries times. Attempt n (1-based)
// waits n×BaseDelay before running, so backoff grows linearly.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration

	// Retryable reports whether err is worth another attempt. A nil
	// Retryable retries every error.
	Retryable func(error) bool

	// Logger receives a Warn line per retry. Nil disables logging.
	Logger *zap.Logger
}

// ExhaustedError is returned when every attempt failed with a retryable
// error. It unwraps to the last failure.
type ExhaustedError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: giving up after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Do runs op until it succeeds, fails with a non-retryable error, the
// retries run out, or ctx is cancelled during a backoff wait.
func Do[T any](ctx context.Context, p Policy, op string, fn func(context.Context) (T, error)) (T, error) {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	var zero T
	for attempt := 0; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return zero, err
		}
		if attempt >= p.MaxRetries {
			return zero, &ExhaustedError{Op: op, Attempts: attempt + 1, Err: err}
		}

		backoff := time.Duration(attempt+1) * base
		if p.Logger != nil {
			p.Logger.Warn("retrying failed call",
				zap.String("op", op),
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", p.MaxRetries),
				zap.Duration("backoff", backoff),
				zap.Error(err))
		}

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, ctx.Err()
		case <-t.C:
		}
	}
}

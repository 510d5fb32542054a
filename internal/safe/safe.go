// Package safe provides guarded execution helpers: calls that turn errors and
// panics into a logged fallback value, and calls bounded by a real deadline.
package safe

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lunacore/luna/internal/errors"
)

// Call runs fn and returns its value. If fn fails or panics, the failure is
// logged under op and fallback is returned instead. No retry is attempted.
func Call[T any](logger zerolog.Logger, op string, fallback T, fn func() (T, error)) T {
	v, err := Try(fn)
	if err != nil {
		logger.Warn().Err(err).Str("operation", op).Msg("operation failed, continuing without it")
		return fallback
	}
	return v
}

// Try runs fn and converts a panic into an error wrapping ErrPanicRecovered.
func Try[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v = zero
			err = fmt.Errorf("%w: %v", errors.ErrPanicRecovered, r)
		}
	}()
	return fn()
}

// WithTimeout runs fn under a context that expires after d. A non-positive d
// runs fn with ctx unchanged. When the deadline fires, the returned error
// wraps both ErrStageTimeout and context.DeadlineExceeded.
func WithTimeout(ctx context.Context, d time.Duration, op string, fn func(context.Context) error) error {
	if d <= 0 {
		return fn(ctx)
	}

	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	err := fn(tctx)
	if err != nil && stderrors.Is(tctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%s after %s: %w", op, d, stderrors.Join(errors.ErrStageTimeout, context.DeadlineExceeded))
	}
	return err
}

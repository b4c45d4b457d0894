package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/errors"
)

// Bound runs a best-effort side effect, such as flushing the shared search
// cache or announcing a finished catalog build, for at most limit. Work that
// overruns is abandoned and reported with an error wrapping
// apperrors.ErrTimeout; cancellation of ctx is reported as such. A
// non-positive limit runs fn directly.
func Bound(ctx context.Context, name string, limit time.Duration, fn func(ctx context.Context) error) error {
	if limit <= 0 {
		return fn(ctx)
	}
	expired := fmt.Errorf("%s: %w after %v", name, apperrors.ErrTimeout, limit)
	bctx, cancel := context.WithTimeoutCause(ctx, limit, expired)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() { done <- fn(bctx) }()
	select {
	case err := <-done:
		return err
	case <-bctx.Done():
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		slog.Default().With("component", "bound", "operation", name).
			Warn("abandoning slow operation", "limit", limit, "elapsed", time.Since(start))
		return context.Cause(bctx)
	}
}

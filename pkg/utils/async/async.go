package async

import (
	"context"

	"github.com/oneiro-lab/morpheus/pkg/utils/errutil"
	"github.com/oneiro-lab/morpheus/pkg/utils/logging"
)

// Dispatch runs handler in a new goroutine with a fresh background context
// that keeps the caller's logger. Errors and panics are logged, never
// propagated; the webhook controller uses this to acknowledge requests
// before the create pipeline finishes.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		_ = errutil.Handle(bgCtx, handler(bgCtx), "async handler failed")
	}()
}

package async

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
)

// DefaultTimeout bounds every dispatched handler
const DefaultTimeout = 30 * time.Second

// Dispatch runs handler in a goroutine, detached from the caller's cancellation.
// The logger and request ID of ctx are carried over; panics and errors are logged.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	newCtx, cancel := context.WithTimeout(newBackgroundContext(ctx), DefaultTimeout)

	go func() {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				ctxlog.From(newCtx).Error("Panic in async handler",
					"recover", r,
					"stack", string(debug.Stack()),
				)
			}
		}()

		if err := handler(newCtx); err != nil {
			ctxlog.From(newCtx).Error("Error in async handler",
				"error", err,
			)
		}
	}()
}

func newBackgroundContext(ctx context.Context) context.Context {
	newCtx := ctxlog.With(context.Background(), ctxlog.From(ctx))

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		newCtx = context.WithValue(newCtx, middleware.RequestIDKey, reqID)
	}
	return newCtx
}

// ctx.go carries the engine's logger through the context.Context that
// every operation already threads.

package logger

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/logger"
)

// FromCtx returns the logger attached to the context (or the default one).
func FromCtx(ctx context.Context) logger.Logger {
	return logger.FromCtx(ctx)
}

// CtxWithLogger returns a context with the given logger attached.
func CtxWithLogger(ctx context.Context, l logger.Logger) context.Context {
	return logger.CtxWithLogger(ctx, l)
}

// Package logging carries request-scoped loggers through context and
// keeps raw user text out of log lines.
package logging

import (
	"context"
	"log/slog"
	"os"

	"github.com/hisr2024/MindVibe-sub009/ai/internal/textnorm"
)

type contextKey struct{}

// Init installs the process-wide slog handler. Dev mode gets readable
// text at debug level; everything else gets JSON at info level.
func Init(dev bool) {
	var handler slog.Handler
	if dev {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

// With returns a context carrying logger. Handlers downstream retrieve
// it with From so every line they emit shares the request's fields.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// From returns the logger carried by ctx. Contexts without one fall
// back to the process default, so From never returns nil.
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// previewLen bounds how much user text a single log line may carry.
const previewLen = 48

// Preview folds user text to one lower-cased line and truncates it.
// Message content only ever reaches logs through this.
func Preview(text string) string {
	return textnorm.Truncate(textnorm.Fold(text), previewLen)
}

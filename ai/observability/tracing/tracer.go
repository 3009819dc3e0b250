// Package tracing times named engine stages and reports each span
// through the request-scoped logger.
package tracing

import (
	"context"
	"time"

	"github.com/hisr2024/MindVibe-sub009/ai/observability/logging"
)

// Tracer gates stage timing. A disabled tracer adds nothing beyond the
// function call, so handlers wrap stages unconditionally.
type Tracer struct {
	enabled bool
}

// NewTracer creates a tracer. Production runs pass enabled=false.
func NewTracer(enabled bool) *Tracer {
	return &Tracer{enabled: enabled}
}

// Span runs fn as one named stage and logs its duration on the logger
// carried by ctx. The error from fn is returned unchanged; a failed
// stage logs at warn instead of debug.
func (t *Tracer) Span(ctx context.Context, stage string, fn func(context.Context) error) error {
	if t == nil || !t.enabled {
		return fn(ctx)
	}

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	logger := logging.From(ctx)
	if err != nil {
		logger.Warn("stage failed", "stage", stage, "durationMs", elapsed.Milliseconds(), "error", err)
		return err
	}
	logger.Debug("stage completed", "stage", stage, "durationMs", elapsed.Milliseconds())
	return nil
}

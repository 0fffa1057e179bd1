package common

import (
	"context"
	"log/slog"
	"time"

	"github.com/schedbot/schedbot/internal/instrumentation"
	"github.com/schedbot/schedbot/internal/logging"
	"github.com/schedbot/schedbot/internal/toolset"
)

// instrumentedTool wraps a tool with metrics and structured logging.
type instrumentedTool struct {
	toolset.Tool
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// InstrumentTool wraps a tool so that every invocation is timed, logged and
// recorded as a metric. A nil metrics recorder or logger degrades to a
// partial wrapper; both nil returns the tool unchanged.
func InstrumentTool(t toolset.Tool, metrics *instrumentation.Metrics, logger *slog.Logger) toolset.Tool {
	if metrics == nil && logger == nil {
		return t
	}
	return &instrumentedTool{Tool: t, metrics: metrics, logger: logger}
}

// InstrumentAll wraps every tool in the registry, preserving order.
func InstrumentAll(reg *toolset.Registry, metrics *instrumentation.Metrics, logger *slog.Logger) (*toolset.Registry, error) {
	tools := reg.List()
	wrapped := make([]toolset.Tool, 0, len(tools))
	for _, t := range tools {
		wrapped = append(wrapped, InstrumentTool(t, metrics, logger))
	}
	return toolset.NewRegistry(wrapped...)
}

func (t *instrumentedTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	start := time.Now()
	result, err := t.Tool.Execute(ctx, args)
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}

	t.metrics.RecordToolInvocation(ctx, t.Name(), status, duration)

	if t.logger != nil {
		t.logger.Info("tool invocation",
			logging.Tool(t.Name()),
			logging.Status(status),
			logging.Duration(duration),
			logging.Err(err),
		)
	}

	return result, err
}

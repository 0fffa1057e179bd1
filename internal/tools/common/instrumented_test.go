package common

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/schedbot/schedbot/internal/instrumentation"
	"github.com/schedbot/schedbot/internal/toolset"
)

type countingTool struct {
	name  string
	calls int
	err   error
}

func (c *countingTool) Name() string               { return c.name }
func (c *countingTool) Description() string        { return "counting" }
func (c *countingTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (c *countingTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	c.calls++
	return "done", c.err
}

func TestInstrumentTool_PassThroughWhenUnconfigured(t *testing.T) {
	tool := &countingTool{name: "t"}
	wrapped := InstrumentTool(tool, nil, nil)
	if wrapped != toolset.Tool(tool) {
		t.Error("expected the unwrapped tool when no instrumentation is configured")
	}
}

func TestInstrumentTool_DelegatesAndPreservesResult(t *testing.T) {
	tool := &countingTool{name: "t"}
	logger := slog.Default()
	wrapped := InstrumentTool(tool, &instrumentation.Metrics{}, logger)

	result, err := wrapped.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result != "done" {
		t.Errorf("result = %q", result)
	}
	if tool.calls != 1 {
		t.Errorf("calls = %d, expected 1", tool.calls)
	}
	if wrapped.Name() != "t" {
		t.Errorf("Name = %q, descriptor must be preserved", wrapped.Name())
	}
}

func TestInstrumentTool_PropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	tool := &countingTool{name: "t", err: wantErr}
	wrapped := InstrumentTool(tool, &instrumentation.Metrics{}, slog.Default())

	_, err := wrapped.Execute(context.Background(), nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, expected %v", err, wantErr)
	}
}

func TestInstrumentAll_PreservesOrder(t *testing.T) {
	reg, err := toolset.NewRegistry(
		&countingTool{name: "b"},
		&countingTool{name: "a"},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	wrapped, err := InstrumentAll(reg, &instrumentation.Metrics{}, slog.Default())
	if err != nil {
		t.Fatalf("InstrumentAll: %v", err)
	}

	list := wrapped.List()
	if len(list) != 2 || list[0].Name() != "b" || list[1].Name() != "a" {
		t.Errorf("unexpected order: %v", []string{list[0].Name(), list[1].Name()})
	}
}

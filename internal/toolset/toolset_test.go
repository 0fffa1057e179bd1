package toolset

import (
	"context"
	"encoding/json"
	"testing"
)

type stubTool struct {
	name string
}

func (s *stubTool) Name() string               { return s.name }
func (s *stubTool) Description() string        { return "stub" }
func (s *stubTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (s *stubTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	return "ok", nil
}

func TestRegistry_PreservesOrder(t *testing.T) {
	reg, err := NewRegistry(&stubTool{name: "c"}, &stubTool{name: "a"}, &stubTool{name: "b"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	list := reg.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(list))
	}
	for i, want := range []string{"c", "a", "b"} {
		if list[i].Name() != want {
			t.Errorf("tool %d = %s, expected %s", i, list[i].Name(), want)
		}
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg, err := NewRegistry(&stubTool{name: "a"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if err := reg.Register(&stubTool{name: "a"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestRegistry_Get(t *testing.T) {
	reg, err := NewRegistry(&stubTool{name: "a"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	if _, ok := reg.Get("a"); !ok {
		t.Error("expected to find registered tool")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("expected miss for unknown tool")
	}
}

func TestStringArg(t *testing.T) {
	args := map[string]any{"summary": "Standup", "count": 3}

	if v, ok := StringArg(args, "summary"); !ok || v != "Standup" {
		t.Errorf("StringArg = %q, %v", v, ok)
	}
	if _, ok := StringArg(args, "count"); ok {
		t.Error("expected false for non-string value")
	}
	if _, ok := StringArg(args, "missing"); ok {
		t.Error("expected false for missing key")
	}
}

func TestNumberArg(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   float64
		wantOK bool
	}{
		{"float64", float64(60), 60, true},
		{"int", int(10), 10, true},
		{"int64", int64(5), 5, true},
		{"json.Number", json.Number("42"), 42, true},
		{"string", "60", 0, false},
		{"invalid json.Number", json.Number("abc"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NumberArg(map[string]any{"k": tt.value}, "k")
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("NumberArg(%v) = %v, %v; expected %v, %v", tt.value, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

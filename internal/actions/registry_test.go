package actions

import (
	"context"
	"testing"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()

	reg.Register("log", HandlerFunc(func(_ context.Context, config, _ map[string]any) (any, error) {
		return config["message"], nil
	}))

	h, ok := reg.Handler("log")
	if !ok {
		t.Fatal("expected handler for registered type")
	}

	result, err := h.Execute(context.Background(), map[string]any{"message": "hi"}, nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result != "hi" {
		t.Errorf("result = %v, want hi", result)
	}

	if _, ok := reg.Handler("missing"); ok {
		t.Error("expected no handler for unregistered type")
	}
}

func TestRegistry_Types(t *testing.T) {
	reg := NewRegistry()
	noop := HandlerFunc(func(context.Context, map[string]any, map[string]any) (any, error) {
		return nil, nil
	})
	reg.Register("webhook", noop)
	reg.Register("log", noop)

	types := reg.Types()
	if len(types) != 2 || types[0] != "log" || types[1] != "webhook" {
		t.Errorf("Types() = %v, want [log webhook]", types)
	}
}

func TestRegistry_ReplaceKeepsLatest(t *testing.T) {
	reg := NewRegistry()
	reg.Register("x", HandlerFunc(func(context.Context, map[string]any, map[string]any) (any, error) {
		return "old", nil
	}))
	reg.Register("x", HandlerFunc(func(context.Context, map[string]any, map[string]any) (any, error) {
		return "new", nil
	}))

	h, _ := reg.Handler("x")
	result, _ := h.Execute(context.Background(), nil, nil)
	if result != "new" {
		t.Errorf("result = %v, want new", result)
	}
}

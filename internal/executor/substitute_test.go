package executor

import (
	"reflect"
	"testing"
)

func TestResolveString(t *testing.T) {
	execCtx := map[string]any{
		"fetch": map[string]any{
			"status": 200,
			"body":   map[string]any{"title": "hello"},
		},
		"name": "taskd",
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single token", "{{name}}", "taskd"},
		{"dotted path", "status was {{fetch.status}}", "status was 200"},
		{"deep path", "{{fetch.body.title}} world", "hello world"},
		{"multiple tokens", "{{name}}: {{fetch.status}}", "taskd: 200"},
		{"unresolved path left literal", "{{fetch.missing}}", "{{fetch.missing}}"},
		{"no tokens", "plain text", "plain text"},
		{"whitespace inside token", "{{ name }}", "taskd"},
		{"traversal through non-map fails", "{{name.sub}}", "{{name.sub}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveString(tt.input, execCtx)
			if got != tt.want {
				t.Errorf("resolveString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveConfig_WalksNestedStructures(t *testing.T) {
	execCtx := map[string]any{"host": "example.com", "port": 8080}

	config := map[string]any{
		"url": "https://{{host}}:{{port}}/hook",
		"headers": map[string]any{
			"X-Origin": "{{host}}",
		},
		"targets": []any{"{{host}}", "static", 42},
		"retries": 3,
	}

	got := resolveConfig(config, execCtx)

	want := map[string]any{
		"url": "https://example.com:8080/hook",
		"headers": map[string]any{
			"X-Origin": "example.com",
		},
		"targets": []any{"example.com", "static", 42},
		"retries": 3,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("resolveConfig = %#v, want %#v", got, want)
	}
}

func TestResolveConfig_DoesNotMutateInput(t *testing.T) {
	config := map[string]any{"msg": "{{greeting}}"}
	resolveConfig(config, map[string]any{"greeting": "hi"})
	if config["msg"] != "{{greeting}}" {
		t.Error("resolveConfig mutated its input")
	}
}

func TestResolveConfig_NilInputs(t *testing.T) {
	if got := resolveConfig(nil, nil); got != nil {
		t.Errorf("resolveConfig(nil) = %v, want nil", got)
	}
	got := resolveConfig(map[string]any{"k": "{{missing}}"}, nil)
	if got["k"] != "{{missing}}" {
		t.Errorf("token against nil context = %v, want literal", got["k"])
	}
}

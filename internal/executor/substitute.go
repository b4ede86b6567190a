package executor

import (
	"fmt"
	"regexp"
	"strings"
)

var templatePattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// resolveConfig deep-copies an action config, replacing {{a.b.c}} tokens
// in string values with the dotted-path lookup into the shared execution
// context. An unresolved path leaves the token text untouched.
func resolveConfig(config map[string]any, execCtx map[string]any) map[string]any {
	if config == nil {
		return nil
	}
	resolved := make(map[string]any, len(config))
	for k, v := range config {
		resolved[k] = resolveValue(v, execCtx)
	}
	return resolved
}

func resolveValue(v any, execCtx map[string]any) any {
	switch val := v.(type) {
	case string:
		return resolveString(val, execCtx)
	case map[string]any:
		return resolveConfig(val, execCtx)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = resolveValue(item, execCtx)
		}
		return out
	default:
		return v
	}
}

func resolveString(s string, execCtx map[string]any) string {
	return templatePattern.ReplaceAllStringFunc(s, func(match string) string {
		path := strings.TrimSpace(strings.Trim(match, "{}"))
		val, ok := lookupPath(execCtx, path)
		if !ok || val == nil {
			return match
		}
		return fmt.Sprintf("%v", val)
	})
}

// lookupPath walks nested map[string]any values along a dotted path.
func lookupPath(m map[string]any, path string) (any, bool) {
	if m == nil {
		return nil, false
	}
	parts := strings.Split(path, ".")
	var current any = m
	for _, part := range parts {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

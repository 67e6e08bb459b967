package render

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/iancoleman/strcase"
)

// DefaultFuncs returns the functions available to every template.
func DefaultFuncs() template.FuncMap {
	return template.FuncMap{
		"camel":      strcase.ToLowerCamel,
		"pascal":     strcase.ToCamel,
		"snake":      strcase.ToSnake,
		"kebab":      strcase.ToKebab,
		"screaming":  strcase.ToScreamingSnake,
		"lower":      strings.ToLower,
		"upper":      strings.ToUpper,
		"trim":       strings.TrimSpace,
		"replace":    func(old, new, s string) string { return strings.ReplaceAll(s, old, new) },
		"hasPrefix":  func(prefix, s string) bool { return strings.HasPrefix(s, prefix) },
		"join":       join,
		"default":    defaultValue,
		"quote":      func(v any) string { return fmt.Sprintf("%q", fmt.Sprint(v)) },
		"contains":   func(substr, s string) bool { return strings.Contains(s, substr) },
		"coalesce":   coalesce,
		"toString":   func(v any) string { return fmt.Sprint(v) },
		"splitLines": func(s string) []string { return strings.Split(strings.TrimRight(s, "\n"), "\n") },
	}
}

// defaultValue returns def when v is nil or an empty string.
// Usage: {{ .license | default "MIT" }}
func defaultValue(def, v any) any {
	if isEmpty(v) {
		return def
	}
	return v
}

func coalesce(values ...any) any {
	for _, v := range values {
		if !isEmpty(v) {
			return v
		}
	}
	return nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	}
	return false
}

func join(sep string, v any) string {
	switch items := v.(type) {
	case []string:
		return strings.Join(items, sep)
	case []any:
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, sep)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

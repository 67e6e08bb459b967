// Package render expands template text against a render context.
//
// Templates use Go text/template syntax: {{.projectName}} interpolates a
// context key, {{if .useTS}}...{{end}} and {{range .deps}}...{{end}} provide
// control flow. A small function map adds case conversion helpers.
//
// A key the template references but the context lacks renders as the empty
// string and is falsy in conditions.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"text/template/parse"
)

// Context is the data a template is evaluated against.
type Context map[string]any

// Clone returns a shallow copy of the context.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge copies every key of src into c, overwriting existing keys.
func (c Context) Merge(src map[string]any) {
	for k, v := range src {
		c[k] = v
	}
}

// Renderer is the templating capability used by the resolver.
type Renderer interface {
	// Render expands text against data. name is used in error messages.
	Render(name, text string, data Context) (string, error)
	// Evaluate reports whether expr is truthy against data.
	Evaluate(expr string, data Context) (bool, error)
}

// Engine implements Renderer on top of text/template.
type Engine struct {
	funcs template.FuncMap
}

// NewEngine creates an Engine with the default function map.
func NewEngine() *Engine {
	return &Engine{funcs: DefaultFuncs()}
}

// WithFuncs returns a copy of the engine with extra functions registered.
// Entries in extra override defaults of the same name.
func (e *Engine) WithFuncs(extra template.FuncMap) *Engine {
	funcs := make(template.FuncMap, len(e.funcs)+len(extra))
	for k, v := range e.funcs {
		funcs[k] = v
	}
	for k, v := range extra {
		funcs[k] = v
	}
	return &Engine{funcs: funcs}
}

// Render expands text against data.
func (e *Engine) Render(name, text string, data Context) (string, error) {
	tmpl, err := template.New(name).Funcs(e.funcs).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(withMissingKeys(tmpl, data))); err != nil {
		return "", fmt.Errorf("execute %s: %w", name, err)
	}
	return buf.String(), nil
}

// Evaluate reports whether expr is truthy. The expression is any pipeline
// valid inside an {{if}} action, e.g. ".useTS" or `eq .lang "go"`.
func (e *Engine) Evaluate(expr string, data Context) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false, fmt.Errorf("empty expression")
	}

	out, err := e.Render("expr", WrapCondition(expr, "1"), data)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// WrapCondition wraps body in a single conditional action keyed on expr.
func WrapCondition(expr, body string) string {
	return "{{if " + strings.TrimSpace(expr) + "}}" + body + "{{end}}"
}

// withMissingKeys returns data extended with an empty string for every field
// path referenced by tmpl that data does not hold. data itself is not
// modified; maps along a filled path are copied.
func withMissingKeys(tmpl *template.Template, data Context) Context {
	out := map[string]any(data)
	if out == nil {
		out = map[string]any{}
	}
	visit := func(path []string) {
		if filled, changed := fillPath(out, path); changed {
			out = filled
		}
	}
	for _, t := range tmpl.Templates() {
		if t.Tree != nil && t.Tree.Root != nil {
			walkFields(t.Tree.Root, visit)
		}
	}
	return Context(out)
}

// fillPath sets the leaf of path to "" when it is absent or nil. Values that
// are neither maps nor absent stop the walk and are left to the template.
func fillPath(m map[string]any, path []string) (map[string]any, bool) {
	if len(path) == 0 {
		return m, false
	}
	v, ok := m[path[0]]
	if len(path) == 1 {
		if ok && v != nil {
			return m, false
		}
		out := copyMap(m)
		out[path[0]] = ""
		return out, true
	}

	var child map[string]any
	switch c := v.(type) {
	case nil:
		child = map[string]any{}
	case map[string]any:
		child = c
	case Context:
		child = map[string]any(c)
	default:
		return m, false
	}
	filled, changed := fillPath(child, path[1:])
	if !changed {
		return m, false
	}
	out := copyMap(m)
	out[path[0]] = filled
	return out, true
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// walkFields calls visit with the identifier path of every field reference
// in node: .a.b yields [a b] and $.a yields [a].
func walkFields(node parse.Node, visit func([]string)) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			walkFields(child, visit)
		}
	case *parse.ActionNode:
		walkFields(n.Pipe, visit)
	case *parse.IfNode:
		walkBranch(&n.BranchNode, visit)
	case *parse.RangeNode:
		walkBranch(&n.BranchNode, visit)
	case *parse.WithNode:
		walkBranch(&n.BranchNode, visit)
	case *parse.TemplateNode:
		walkFields(n.Pipe, visit)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, cmd := range n.Cmds {
			walkFields(cmd, visit)
		}
	case *parse.CommandNode:
		for _, arg := range n.Args {
			walkFields(arg, visit)
		}
	case *parse.ChainNode:
		walkFields(n.Node, visit)
	case *parse.FieldNode:
		visit(n.Ident)
	case *parse.VariableNode:
		if len(n.Ident) > 1 && n.Ident[0] == "$" {
			visit(n.Ident[1:])
		}
	}
}

func walkBranch(b *parse.BranchNode, visit func([]string)) {
	walkFields(b.Pipe, visit)
	walkFields(b.List, visit)
	if b.ElseList != nil {
		walkFields(b.ElseList, visit)
	}
}

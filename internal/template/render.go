// Package template renders command templates against a variable context.
//
// References use the form {{ dotted.name }}. A reference that does not
// resolve in the context is left in place as literal text instead of
// rendering empty or failing, so an incompletely rendered command stays
// diagnosable and re-rendering with a richer context is always safe.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

var refPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_-]+(?:\.[A-Za-z0-9_-]+)*)\s*\}\}`)

// Context is the variable namespace a template renders against. Values may
// be nested maps, addressed with dotted references.
type Context map[string]interface{}

// Undefined decides what an unresolved reference renders as.
type Undefined func(name string) string

// KeepUndefined renders an unresolved reference back to its literal
// {{ name }} form. This is the default strategy.
func KeepUndefined(name string) string {
	return "{{ " + name + " }}"
}

// Renderer substitutes context values into template strings.
type Renderer struct {
	// Undefined decides what an unresolved reference renders as. A nil
	// strategy falls back to KeepUndefined.
	Undefined Undefined
}

// NewRenderer creates a Renderer with the KeepUndefined strategy.
func NewRenderer() *Renderer {
	return &Renderer{Undefined: KeepUndefined}
}

// Render substitutes every resolvable {{ dotted.name }} reference in s with
// the string form of its context value.
func (r *Renderer) Render(s string, ctx Context) string {
	if ctx == nil {
		return s
	}
	return refPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := refPattern.FindStringSubmatch(match)[1]
		value, ok := resolve(ctx, strings.Split(name, "."))
		if !ok {
			if r.Undefined != nil {
				return r.Undefined(name)
			}
			return KeepUndefined(name)
		}
		return fmt.Sprint(value)
	})
}

// RenderAll renders each string in order, returning a slice of the same
// length. A nil context returns the input unchanged.
func (r *Renderer) RenderAll(strs []string, ctx Context) []string {
	if ctx == nil {
		return strs
	}
	out := make([]string, len(strs))
	for i, s := range strs {
		out[i] = r.Render(s, ctx)
	}
	return out
}

// resolve walks a dotted path through nested maps.
func resolve(ctx Context, path []string) (interface{}, bool) {
	var current interface{} = map[string]interface{}(ctx)
	for _, key := range path {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case Context:
		return m, true
	case map[string]string:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, true
	default:
		return nil, false
	}
}

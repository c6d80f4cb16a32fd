// Package expand computes parameter bindings from declared axes.
package expand

import (
	"fmt"
	"strings"

	"github.com/unframe/unframe/internal/spec"
)

// Binding assigns one concrete value to every parameter name. Key order
// follows the declaration order of the axes and is stable across runs.
type Binding struct {
	keys   []string
	values map[string]interface{}
}

// Keys returns the parameter names in declaration order.
func (b Binding) Keys() []string {
	return b.keys
}

// Get returns the value bound to name.
func (b Binding) Get(name string) (interface{}, bool) {
	v, ok := b.values[name]
	return v, ok
}

// Len returns the number of bound parameters.
func (b Binding) Len() int {
	return len(b.keys)
}

// Map returns a copy of the binding as a plain map.
func (b Binding) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

// Strings returns the binding with every value coerced to its string form,
// suitable for process environment entries and script arguments.
func (b Binding) Strings() map[string]string {
	out := make(map[string]string, len(b.values))
	for k, v := range b.values {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// String renders the binding as "k=v" pairs in declaration order.
func (b Binding) String() string {
	parts := make([]string, 0, len(b.keys))
	for _, k := range b.keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, b.values[k]))
	}
	return strings.Join(parts, " ")
}

func (b Binding) with(name string, value interface{}) Binding {
	keys := make([]string, 0, len(b.keys)+1)
	keys = append(keys, b.keys...)
	keys = append(keys, name)

	values := make(map[string]interface{}, len(b.values)+1)
	for k, v := range b.values {
		values[k] = v
	}
	values[name] = value

	return Binding{keys: keys, values: values}
}

// Expand produces the cartesian product of the axes as an ordered list of
// bindings. The first axis varies slowest and the last axis fastest, so
// task enumeration order matches declaration order. Zero axes yield
// exactly one empty binding. No combination is skipped or deduplicated.
func Expand(axes []spec.ParamAxis) []Binding {
	bindings := []Binding{{values: map[string]interface{}{}}}
	for _, axis := range axes {
		next := make([]Binding, 0, len(bindings)*len(axis.Values))
		for _, b := range bindings {
			for _, v := range axis.Values {
				next = append(next, b.with(axis.Name, v))
			}
		}
		bindings = next
	}
	return bindings
}

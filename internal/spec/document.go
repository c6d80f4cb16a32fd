// Package spec loads and validates test specification documents.
//
// One YAML file describes one test case: a templated command, parameter
// axes to sweep, environment overrides, reusable snippets, and optional
// inline parse/validate blocks.
package spec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is one test specification loaded from a YAML file.
type Document struct {
	Name        string
	Description string
	Env         map[string]string
	Tags        []string
	Snippets    []Snippet
	Params      []ParamAxis
	Command     []string
	WorkDir     string
	Parse       string
	Validate    string

	// File is the base name of the file the document was loaded from.
	File string
}

// Snippet is a named reusable multi-line text fragment.
type Snippet struct {
	Name    string `yaml:"name"`
	Content string `yaml:"content"`
}

// ParamAxis is one named parameter and its ordered candidate values.
type ParamAxis struct {
	Name   string
	Values []interface{}
}

// HasTag reports whether the document carries the given tag.
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// yamlDocument mirrors the on-disk field layout.
type yamlDocument struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Env         map[string]interface{} `yaml:"env"`
	Tags        []string               `yaml:"tags"`
	Snippets    []Snippet              `yaml:"snippets"`
	Params      paramList              `yaml:"params"`
	Command     []string               `yaml:"command"`
	WorkDir     string                 `yaml:"workdir"`
	Parse       string                 `yaml:"parse"`
	Validate    string                 `yaml:"validate"`
}

// paramList preserves the declaration order of the params mapping. The
// order is observable in task enumeration and must be reproducible, so
// the mapping is walked node by node instead of decoding into a Go map.
type paramList []ParamAxis

func (p *paramList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("params must be a mapping of name to value list")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var name string
		if err := node.Content[i].Decode(&name); err != nil {
			return fmt.Errorf("params key: %w", err)
		}
		var values []interface{}
		if err := node.Content[i+1].Decode(&values); err != nil {
			return fmt.Errorf("params %q: %w", name, err)
		}
		*p = append(*p, ParamAxis{Name: name, Values: values})
	}
	return nil
}

func (y *yamlDocument) toDocument(file string) *Document {
	env := make(map[string]string, len(y.Env))
	for k, v := range y.Env {
		env[k] = fmt.Sprint(v)
	}
	return &Document{
		Name:        y.Name,
		Description: y.Description,
		Env:         env,
		Tags:        y.Tags,
		Snippets:    y.Snippets,
		Params:      []ParamAxis(y.Params),
		Command:     y.Command,
		WorkDir:     y.WorkDir,
		Parse:       y.Parse,
		Validate:    y.Validate,
		File:        file,
	}
}

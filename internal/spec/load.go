package spec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// documentSchema is the wire contract for a specification document. Every
// file is validated against it before field extraction so schema violations
// surface as load errors with the offending path.
const documentSchema = `{
  "type": "object",
  "required": ["name", "command"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "env": {
      "type": "object",
      "additionalProperties": {"type": ["string", "number", "boolean"]}
    },
    "tags": {"type": "array", "items": {"type": "string"}},
    "snippets": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "content"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "content": {"type": "string"}
        }
      }
    },
    "params": {
      "type": "object",
      "additionalProperties": {"type": "array"}
    },
    "command": {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "workdir": {"type": "string"},
    "parse": {"type": "string"},
    "validate": {"type": "string"}
  }
}`

var compiledSchema = jsonschema.MustCompileString("document.schema.json", documentSchema)

// LoadFile loads, validates and decodes one specification document.
// Any failure is returned as a *LoadError.
func LoadFile(path string) (*Document, error) {
	file := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: file, Err: err}
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{File: file, Err: fmt.Errorf("invalid YAML: %w", err)}
	}

	// The schema compiler checks JSON value shapes, so normalize the YAML
	// value through a JSON round trip before validating.
	jsonBytes, err := json.Marshal(raw)
	if err != nil {
		return nil, &LoadError{File: file, Err: err}
	}
	var jsonValue interface{}
	if err := json.Unmarshal(jsonBytes, &jsonValue); err != nil {
		return nil, &LoadError{File: file, Err: err}
	}
	if err := compiledSchema.Validate(jsonValue); err != nil {
		return nil, &LoadError{File: file, Err: err}
	}

	var ydoc yamlDocument
	if err := yaml.Unmarshal(data, &ydoc); err != nil {
		return nil, &LoadError{File: file, Err: err}
	}

	doc := ydoc.toDocument(file)

	// Duplicate snippet names are a hard error at load time.
	if _, err := SnippetTable(doc.Snippets); err != nil {
		return nil, &LoadError{File: file, Err: err}
	}

	return doc, nil
}

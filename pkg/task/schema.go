package task

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// collectionSchema is the shape contract for JSON input. Ids may be strings
// or numbers; status and priority strings are deliberately unconstrained so
// unrecognized values pass through to the leniency handling downstream.
const collectionSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Task collection",
  "type": "object",
  "anyOf": [
    {"required": ["groups"]},
    {"required": ["tasks"]}
  ],
  "properties": {
    "groups": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["tasks"],
        "properties": {
          "tasks": {"type": "array", "items": {"$ref": "#/$defs/task"}}
        }
      }
    },
    "tasks": {"type": "array", "items": {"$ref": "#/$defs/task"}}
  },
  "$defs": {
    "task": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"type": ["string", "number"]},
        "title": {"type": "string"},
        "status": {"type": "string"},
        "priority": {"type": "string"},
        "complexity": {"type": "number"},
        "dependencies": {
          "type": "array",
          "items": {"type": ["string", "number"]}
        },
        "subtasks": {"type": "array", "items": {"$ref": "#/$defs/task"}}
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(collectionSchema))
		if err != nil {
			schemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("collection.schema.json", doc); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile("collection.schema.json")
	})
	return schema, schemaErr
}

// ValidateJSON checks raw JSON against the collection schema. Violations
// wrap ErrInvalidCollection so callers can map them to a failure result.
func ValidateJSON(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCollection, err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCollection, err)
	}
	return nil
}

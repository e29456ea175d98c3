package planmodel

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/zoeorch/zoeorch/internal/zoerr"
)

// planSchemaDoc is the formal JSON Schema for a plan file, checked ahead of
// the structural DAG/routing validation in Validate. It catches malformed
// shapes (wrong types, missing required fields) with a precise pointer into
// the document, which the hand-rolled field walk in validate.go does not
// give a caller.
const planSchemaDoc = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "plan",
  "type": "object",
  "required": ["planId", "repo", "title", "requestedBy", "objective", "subtasks", "version"],
  "properties": {
    "planId": {"type": "string", "minLength": 1},
    "repo": {"type": "string", "minLength": 1},
    "title": {"type": "string", "minLength": 1},
    "requestedBy": {"type": "string", "minLength": 1},
    "requestedAt": {"type": "integer"},
    "objective": {"type": "string", "minLength": 1},
    "version": {"type": "string", "minLength": 1},
    "constraints": {"type": "object"},
    "context": {"type": "object"},
    "routing": {
      "type": "object",
      "properties": {
        "agent": {"type": "string"},
        "model": {"type": "string"},
        "effort": {"type": "string"}
      }
    },
    "subtasks": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "title", "description", "agent", "model", "effort", "worktreeStrategy", "prompt"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "agent": {"type": "string", "enum": ["codex", "claude"]},
          "model": {"type": "string", "minLength": 1},
          "effort": {"type": "string", "enum": ["low", "medium", "high"]},
          "worktreeStrategy": {"type": "string", "enum": ["shared", "isolated"]},
          "dependsOn": {"type": "array", "items": {"type": "string"}},
          "filesHint": {"type": "array", "items": {"type": "string"}},
          "prompt": {"type": "string", "minLength": 1},
          "definitionOfDone": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

var planSchema *jsonschema.Schema

func init() {
	var doc any
	if err := json.Unmarshal([]byte(planSchemaDoc), &doc); err != nil {
		panic("planmodel: embedded schema does not parse: " + err.Error())
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("plan.schema.json", doc); err != nil {
		panic("planmodel: embedded schema is not a valid resource: " + err.Error())
	}
	schema, err := compiler.Compile("plan.schema.json")
	if err != nil {
		panic("planmodel: embedded schema does not compile: " + err.Error())
	}
	planSchema = schema
}

// ValidateSchema checks raw plan JSON against the formal plan schema,
// independent of (and ahead of) the Go-struct-level DAG/routing checks in
// Validate. Intended for plan files a caller authored by hand, where a
// precise schema-validation error is more actionable than an unmarshal
// error silently zero-valuing a misspelled field.
func ValidateSchema(raw []byte) error {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return zoerr.InvalidPlan("plan is not valid JSON: %v", err)
	}
	if err := planSchema.Validate(doc); err != nil {
		return zoerr.InvalidPlan("plan failed schema validation: %v", err)
	}
	return nil
}

package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const predictSchemaURL = "digitpad://schema/predict-response.json"

const predictSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["prediction", "predictions"],
  "properties": {
    "prediction": {"type": "integer", "minimum": 0, "maximum": 9},
    "expected": {"type": ["integer", "null"], "minimum": 0, "maximum": 9},
    "correct": {"type": ["boolean", "null"]},
    "predictions": {
      "type": "object",
      "required": ["0", "1", "2", "3", "4", "5", "6", "7", "8", "9"],
      "additionalProperties": {"type": "number"}
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func predictResponseSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(predictSchemaURL, strings.NewReader(predictSchema)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(predictSchemaURL)
	})
	return schema, schemaErr
}

// ValidatePredictResponse checks a raw predict body against the response
// schema before it is decoded.
func ValidatePredictResponse(body []byte) error {
	s, err := predictResponseSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return &MalformedResponseError{Reason: "invalid json", Err: err}
	}
	if err := s.Validate(instance); err != nil {
		return &MalformedResponseError{Reason: "schema validation failed", Err: err}
	}
	return nil
}

package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// artifactSchemaJSON is the JSON Schema for tuning result artifacts.
// It mirrors the shape produced by the upstream tuning stage: one model
// family per file, a list of hyperparameter configurations, and per
// configuration a list of fold-level metric observations.
const artifactSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Tuning result artifact",
  "type": "object",
  "required": ["model_id", "configs"],
  "properties": {
    "model_id": {"type": "string", "minLength": 1},
    "timestamp": {"type": "string"},
    "metadata": {"type": "object"},
    "configs": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["label", "resample_metrics"],
        "properties": {
          "label": {"type": "string", "minLength": 1},
          "hyperparameters": {"type": "object"},
          "resample_metrics": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["fold_id", "metric", "value"],
              "properties": {
                "fold_id": {"type": "string", "minLength": 1},
                "metric": {"type": "string", "minLength": 1},
                "value": {"type": "number"}
              }
            }
          }
        }
      }
    }
  }
}`

// artifactSchema is the compiled JSON Schema for result artifacts.
var artifactSchema *jsonschema.Schema

func init() {
	artifactSchema = mustCompileSchema(artifactSchemaJSON, "artifact.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidateArtifactBytes validates raw artifact JSON against the
// embedded schema. Returns one message per violation; nil means valid.
func ValidateArtifactBytes(data []byte) []string {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return []string{fmt.Sprintf("JSON parse error: %v", err)}
	}
	return validateAgainstSchema(artifactSchema, doc)
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

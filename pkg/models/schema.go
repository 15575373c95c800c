package models

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// JSON schemas for the documents the CLI and API accept. Validation happens
// before unmarshalling so callers get field-level messages instead of Go
// decoding errors.

const datasetSchema = `{
	"type": "object",
	"required": ["name", "schema"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"schema": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name", "type"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"type": {"enum": ["numeric", "categorical", "datetime", "text", "boolean"]},
					"nullable": {"type": "boolean"}
				}
			}
		},
		"size": {
			"type": "object",
			"properties": {
				"rows": {"type": "integer", "minimum": 0},
				"columns": {"type": "integer", "minimum": 0},
				"bytes": {"type": "integer", "minimum": 0}
			}
		}
	}
}`

const problemConfigSchema = `{
	"type": "object",
	"required": ["problem_type", "objective"],
	"properties": {
		"problem_type": {"enum": ["classification", "regression", "forecasting", "clustering"]},
		"target": {
			"type": "object",
			"properties": {
				"column": {"type": "string"},
				"positive_class": {"type": "string"}
			}
		},
		"objective": {
			"type": "object",
			"required": ["metric", "direction"],
			"properties": {
				"metric": {"type": "string", "minLength": 1},
				"direction": {"enum": ["maximize", "minimize"]}
			}
		},
		"constraints": {
			"type": "object",
			"properties": {
				"interpretability": {"enum": ["low", "medium", "high"]},
				"deployment_target": {"type": "string"}
			}
		},
		"split": {
			"type": "object",
			"properties": {
				"train": {"type": "number", "minimum": 0, "maximum": 1},
				"validation": {"type": "number", "minimum": 0, "maximum": 1},
				"test": {"type": "number", "minimum": 0, "maximum": 1},
				"stratified": {"type": "boolean"}
			}
		}
	}
}`

// ValidateDatasetJSON checks a raw dataset document against the dataset
// schema.
func ValidateDatasetJSON(data []byte) error {
	return validateJSON(datasetSchema, data, "dataset")
}

// ValidateProblemConfigJSON checks a raw problem configuration document
// against the config schema.
func ValidateProblemConfigJSON(data []byte) error {
	return validateJSON(problemConfigSchema, data, "problem config")
}

func validateJSON(schema string, data []byte, label string) error {
	schemaLoader := gojsonschema.NewStringLoader(schema)
	dataLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate %s document: %w", label, err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, resultErr := range result.Errors() {
			messages = append(messages, resultErr.String())
		}

		return fmt.Errorf("%s schema validation failed: %s", label, strings.Join(messages, "; "))
	}

	return nil
}

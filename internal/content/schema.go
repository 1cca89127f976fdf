package content

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const bundleSchemaURL = "schema://nalanda-bundle.json"

// BundleSchema is the JSON Schema every bundle document must satisfy before
// it is decoded. Semantic checks (rubric sums, duplicate ids) run afterwards
// in Validate.
var BundleSchema = map[string]any{
	"type":     "object",
	"required": []any{"schemaVersion", "questions"},
	"properties": map[string]any{
		"schemaVersion": map[string]any{"type": "string", "minLength": 1},
		"worksheet":     worksheetSchema,
		"questions": map[string]any{
			"type":  "array",
			"items": questionSchema,
		},
		"results": map[string]any{
			"type":                 "object",
			"additionalProperties": outcomeSchema,
		},
	},
}

var worksheetSchema = map[string]any{
	"type":     "object",
	"required": []any{"id"},
	"properties": map[string]any{
		"id":            map[string]any{"type": "string", "minLength": 1},
		"title":         map[string]any{"type": "string"},
		"questions":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"worksheetType": map[string]any{"enum": []any{"", "practice", "classroom", "sample"}},
		"authorId":      map[string]any{"type": "string"},
	},
}

var questionSchema = map[string]any{
	"type":     "object",
	"required": []any{"id", "currencyType", "gradingMode", "solutionSteps"},
	"properties": map[string]any{
		"id":           map[string]any{"type": "string", "minLength": 1},
		"currencyType": map[string]any{"enum": []any{"spark", "coin", "gold", "diamond"}},
		"gradingMode":  map[string]any{"enum": []any{"system", "ai"}},
		"aiRubric": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "integer", "minimum": 0},
		},
		"solutionSteps": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"subQuestions"},
				"properties": map[string]any{
					"subQuestions": map[string]any{
						"type":     "array",
						"minItems": 1,
						"items":    subQuestionSchema,
					},
				},
			},
		},
	},
}

var subQuestionSchema = map[string]any{
	"type":     "object",
	"required": []any{"id", "marks", "answerType"},
	"properties": map[string]any{
		"id":         map[string]any{"type": "string", "minLength": 1},
		"marks":      map[string]any{"type": "number", "exclusiveMinimum": 0},
		"answerType": map[string]any{"enum": []any{"numerical", "mcq", "text"}},
		"reference": map[string]any{
			"type":     "object",
			"required": []any{"correctValue", "baseUnit", "tolerance"},
			"properties": map[string]any{
				"correctValue": map[string]any{"type": "number"},
				"baseUnit":     map[string]any{"type": "string"},
				"tolerance":    map[string]any{"type": "number", "minimum": 0},
			},
		},
		"options": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"answer":  map[string]any{"type": "string"},
	},
}

var outcomeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"isCorrect": map[string]any{"type": "boolean"},
		"score":     map[string]any{"type": "number"},
		"aiBreakdown": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "number"},
		},
	},
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// bundleValidator compiles BundleSchema on first use.
func bundleValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a plain decoded JSON value, not Go maps with
		// typed slices, so round-trip through encoding/json.
		raw, err := json.Marshal(BundleSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal bundle schema: %w", err)
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			compileErr = fmt.Errorf("parse bundle schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(bundleSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(bundleSchemaURL)
	})
	return compiledSchema, compileErr
}

package validation

import (
	"errors"
	"testing"
)

func TestCompileRejectsEmptySchema(t *testing.T) {
	if _, err := Compile(nil); !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}

func TestSchemaValidateJSONReportsIssues(t *testing.T) {
	schema := MustCompile(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"size": map[string]any{"type": "number", "minimum": 0},
		},
		"required": []any{"name"},
	})

	if err := schema.ValidateJSON([]byte(`{"name":"ok","size":2}`)); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	err := schema.ValidateJSON([]byte(`{"size":-1}`))
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
	if issues := Issues(err); len(issues) < 2 {
		t.Fatalf("expected issues for missing name and negative size, got %+v", issues)
	}
}

func TestSchemaValidateValueUsesWireForm(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	schema := MustCompile(map[string]any{
		"type":                 "object",
		"properties":           map[string]any{"name": map[string]any{"type": "string", "minLength": 1}},
		"additionalProperties": false,
	})
	if err := schema.ValidateValue(payload{Name: "x"}); err != nil {
		t.Fatalf("expected valid value, got %v", err)
	}
	if err := schema.ValidateValue(payload{}); err == nil {
		t.Fatal("expected empty name to fail minLength")
	}
}

func TestNilSchemaSkipsValidation(t *testing.T) {
	var schema *Schema
	if err := schema.ValidateJSON([]byte(`not json`)); err != nil {
		t.Fatalf("expected nil schema to skip validation, got %v", err)
	}
}

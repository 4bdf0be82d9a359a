package validation

import (
	"errors"
	"strings"
	"testing"
)

var sampleSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"kind":    map[string]any{"type": "string", "minLength": 1},
		"version": map[string]any{"type": []any{"string", "number"}},
	},
	"required":             []any{"kind"},
	"additionalProperties": false,
}

func TestValidatePayloadAcceptsYAMLShapedInput(t *testing.T) {
	payload := map[string]any{
		"kind":    "PRD",
		"version": 1.2,
	}
	if err := ValidatePayload(sampleSchema, payload); err != nil {
		t.Fatalf("ValidatePayload: %v", err)
	}
}

func TestValidatePayloadReportsIssues(t *testing.T) {
	err := ValidatePayload(sampleSchema, map[string]any{"extra": true})
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
	issues := Issues(err)
	if len(issues) == 0 {
		t.Fatalf("expected issues to be extracted")
	}
	if !strings.Contains(err.Error(), "#") {
		t.Fatalf("expected location markers in %q", err.Error())
	}
}

func TestCompileRejectsBrokenSchema(t *testing.T) {
	_, err := Compile(map[string]any{"type": 12})
	if !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}

func TestNormalizeYAMLConvertsInterfaceKeys(t *testing.T) {
	in := map[string]any{
		"version": map[any]any{"major": 1, "minor": 2},
		"list":    []any{map[any]any{"a": "b"}},
	}
	out := NormalizeYAML(in).(map[string]any)
	version, ok := out["version"].(map[string]any)
	if !ok || version["major"] != 1 {
		t.Fatalf("unexpected normalised version: %#v", out["version"])
	}
	list := out["list"].([]any)
	if _, ok := list[0].(map[string]any); !ok {
		t.Fatalf("nested list maps must be normalised: %#v", list[0])
	}
}

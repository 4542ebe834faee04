package cue

import (
	"strings"
	"testing"
)

// TestNewValidator tests the Validator constructor
func TestNewValidator(t *testing.T) {
	v := NewValidator()
	if v == nil {
		t.Fatal("NewValidator returned nil")
	}
	if v.ctx == nil {
		t.Error("Validator.ctx is nil")
	}
	if len(v.schemas) != 0 {
		t.Errorf("Expected empty schemas map, got %d entries", len(v.schemas))
	}
}

// TestLoadSchemas tests loading embedded CUE schemas
func TestLoadSchemas(t *testing.T) {
	v := NewValidator()
	if err := v.LoadSchemas(); err != nil {
		t.Fatalf("LoadSchemas failed: %v", err)
	}
	if _, ok := v.schemas["forms"]; !ok {
		t.Error("Expected schema \"forms\" to be loaded")
	}
}

func TestValidateFormsYAML(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantError string
	}{
		{
			name: "valid registry",
			yaml: `
forms:
  - key: falls
    label: Falls
    kind: generic
    spec: medical/falls.csv
  - key: dep
    label: Dependency
    kind: dependency
    spec: vulnerability/dependency.csv
    storage_key: form.dep.v2
    legacy_keys: [geriatrie.form.dependance.v1]
order: [Dependency, Falls]
`,
		},
		{
			name: "unknown kind",
			yaml: `
forms:
  - key: falls
    label: Falls
    kind: scale
    spec: falls.csv
`,
			wantError: "forms.0.kind",
		},
		{
			name: "missing label",
			yaml: `
forms:
  - key: falls
    kind: generic
    spec: falls.csv
`,
			wantError: "label",
		},
		{
			name: "spec must be a csv",
			yaml: `
forms:
  - key: falls
    label: Falls
    kind: generic
    spec: falls.txt
`,
			wantError: "spec",
		},
		{
			name: "unknown field",
			yaml: `
forms:
  - key: falls
    label: Falls
    kind: generic
    spec: falls.csv
    colour: red
`,
			wantError: "colour",
		},
		{
			name:      "empty registry",
			yaml:      "forms: []\n",
			wantError: "forms",
		},
		{
			name:      "malformed yaml",
			yaml:      "forms: [\n",
			wantError: "error parsing YAML",
		},
	}

	v := NewValidator()
	if err := v.LoadSchemas(); err != nil {
		t.Fatalf("LoadSchemas failed: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := v.ValidateFormsYAML([]byte(tt.yaml), "forms.yaml")
			if err != nil {
				t.Fatalf("ValidateFormsYAML returned error: %v", err)
			}
			if tt.wantError == "" {
				if len(errs) != 0 {
					t.Errorf("expected no validation errors, got %v", errs)
				}
				return
			}
			if len(errs) == 0 {
				t.Fatalf("expected a validation error mentioning %q", tt.wantError)
			}
			var all []string
			for _, e := range errs {
				all = append(all, e.String())
				if e.File != "forms.yaml" {
					t.Errorf("File = %q, want forms.yaml", e.File)
				}
			}
			if joined := strings.Join(all, "\n"); !strings.Contains(joined, tt.wantError) {
				t.Errorf("errors %q do not mention %q", joined, tt.wantError)
			}
		})
	}
}

func TestValidateWithoutSchemas(t *testing.T) {
	v := NewValidator()
	if _, err := v.ValidateForms(map[string]any{}, ""); err == nil {
		t.Error("expected an error when schemas are not loaded")
	}
}

func TestDecodeYAML(t *testing.T) {
	data, err := DecodeYAML([]byte(""))
	if err != nil {
		t.Fatalf("DecodeYAML failed: %v", err)
	}
	if data == nil {
		t.Error("expected an empty map for empty input")
	}
}

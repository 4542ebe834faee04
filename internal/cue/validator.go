package cue

import (
	"embed"
	"fmt"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	yamlv3 "gopkg.in/yaml.v3"
)

//go:embed schemas/*.cue
var schemaFS embed.FS

// ValidationError represents a validation error
type ValidationError struct {
	File     string `json:"file,omitempty"`
	Path     string `json:"path,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // error or warning
}

func (e ValidationError) String() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(": ")
	}
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// Validator handles CUE validation
type Validator struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}
}

// LoadSchemas loads all CUE schema files from the embedded filesystem
func (v *Validator) LoadSchemas() error {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return fmt.Errorf("could not read embedded schemas: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".cue" {
			continue
		}
		content, err := schemaFS.ReadFile("schemas/" + entry.Name())
		if err != nil {
			return fmt.Errorf("could not read schema %s: %w", entry.Name(), err)
		}

		inst := v.ctx.CompileBytes(content, cue.Filename(entry.Name()))
		if instErr := inst.Err(); instErr != nil {
			return fmt.Errorf("invalid schema %s: %w", entry.Name(), instErr)
		}

		// forms.cue -> forms
		schemaName := strings.TrimSuffix(entry.Name(), ".cue")
		v.schemas[schemaName] = inst.Value()
	}

	if len(v.schemas) == 0 {
		return fmt.Errorf("no CUE schemas loaded")
	}
	return nil
}

// ValidateForms validates a decoded questionnaire registry.
func (v *Validator) ValidateForms(data map[string]any, file string) ([]ValidationError, error) {
	return v.validate("forms", data, file)
}

// ValidateFormsYAML decodes YAML content and validates it as a registry.
func (v *Validator) ValidateFormsYAML(content []byte, file string) ([]ValidationError, error) {
	data, err := DecodeYAML(content)
	if err != nil {
		return []ValidationError{{File: file, Message: err.Error(), Severity: "error"}}, nil
	}
	return v.ValidateForms(data, file)
}

// validate checks data against the #<Name> definition of a schema.
func (v *Validator) validate(schemaType string, data map[string]any, file string) ([]ValidationError, error) {
	schema, ok := v.schemas[schemaType]
	if !ok {
		return nil, fmt.Errorf("schema %q not loaded", schemaType)
	}

	dataValue := v.ctx.Encode(data)
	if encErr := dataValue.Err(); encErr != nil {
		return nil, fmt.Errorf("error encoding data: %w", encErr)
	}

	defPath := cue.ParsePath("#" + strings.ToUpper(schemaType[:1]) + schemaType[1:])
	def := schema.LookupPath(defPath)
	if !def.Exists() {
		return nil, fmt.Errorf("schema %q has no %s definition", schemaType, defPath)
	}

	unified := def.Unify(dataValue)
	if err := unified.Err(); err != nil {
		return extractErrors(err, file), nil
	}
	// Concreteness catches missing required fields.
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return extractErrors(err, file), nil
	}
	return nil, nil
}

// extractErrors splits a CUE error into one ValidationError per failure.
func extractErrors(err error, file string) []ValidationError {
	var out []ValidationError
	seen := make(map[string]bool)
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		ve := ValidationError{
			File:     file,
			Path:     strings.Join(e.Path(), "."),
			Message:  fmt.Sprintf(format, args...),
			Severity: "error",
		}
		if key := ve.String(); !seen[key] {
			seen[key] = true
			out = append(out, ve)
		}
	}
	if len(out) == 0 {
		out = append(out, ValidationError{File: file, Message: err.Error(), Severity: "error"})
	}
	return out
}

// DecodeYAML parses YAML into a generic map suitable for CUE encoding.
func DecodeYAML(content []byte) (map[string]any, error) {
	var data map[string]any
	if err := yamlv3.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}
	if data == nil {
		data = make(map[string]any)
	}
	return data, nil
}

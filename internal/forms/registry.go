// Package forms describes the questionnaire instances of an assessment and
// loads their specification sheets.
package forms

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/geriassess/internal/cue"
	"github.com/dotcommander/geriassess/internal/textutil"
	"github.com/dotcommander/geriassess/internal/types"
)

//go:embed forms.yaml
var defaultRegistry []byte

// Registry errors.
var (
	ErrUnknownForm     = errors.New("unknown questionnaire")
	ErrInvalidRegistry = errors.New("invalid questionnaire registry")
)

// Form is one questionnaire instance.
type Form struct {
	Key        string     `yaml:"key" json:"key"`
	Label      string     `yaml:"label" json:"label"`
	Category   string     `yaml:"category,omitempty" json:"category,omitempty"`
	Kind       types.Kind `yaml:"kind" json:"kind"`
	Spec       string     `yaml:"spec" json:"spec"`
	Section    string     `yaml:"section,omitempty" json:"section,omitempty"`
	StorageKey string     `yaml:"storage_key,omitempty" json:"storage_key"`
	LegacyKeys []string   `yaml:"legacy_keys,omitempty" json:"legacy_keys,omitempty"`
}

// Target returns the section or group name selected in the sheet.
func (f Form) Target() string {
	if f.Section != "" {
		return f.Section
	}
	return f.Label
}

// Storage returns the answer store key of the form.
func (f Form) Storage() string {
	if f.StorageKey != "" {
		return f.StorageKey
	}
	return fmt.Sprintf("form.%s.v2", f.Key)
}

// Registry is the ordered list of forms plus the editorial report order.
type Registry struct {
	Forms []Form   `yaml:"forms"`
	Order []string `yaml:"order,omitempty"`
}

// Default returns the embedded registry.
func Default() (*Registry, error) {
	return Parse(defaultRegistry, "forms.yaml")
}

// LoadFile reads and validates a registry file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	return Parse(data, path)
}

// Parse validates YAML content against the registry schema and decodes it.
func Parse(data []byte, file string) (*Registry, error) {
	if errs := Validate(data, file); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidRegistry, strings.Join(msgs, "; "))
	}

	var r Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegistry, err)
	}
	return &r, nil
}

// Validate checks registry content: the CUE schema first, then the rules
// the schema cannot express.
func Validate(data []byte, file string) []cue.ValidationError {
	v := cue.NewValidator()
	if err := v.LoadSchemas(); err != nil {
		return []cue.ValidationError{{File: file, Message: err.Error(), Severity: "error"}}
	}
	errs, err := v.ValidateFormsYAML(data, file)
	if err != nil {
		return []cue.ValidationError{{File: file, Message: err.Error(), Severity: "error"}}
	}
	if len(errs) > 0 {
		return errs
	}

	var r Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return []cue.ValidationError{{File: file, Message: err.Error(), Severity: "error"}}
	}
	return r.check(file)
}

// check reports duplicate keys and storage keys.
func (r *Registry) check(file string) []cue.ValidationError {
	var errs []cue.ValidationError
	keys := make(map[string]bool)
	storage := make(map[string]string)
	for i, f := range r.Forms {
		path := fmt.Sprintf("forms.%d", i)
		if keys[f.Key] {
			errs = append(errs, cue.ValidationError{
				File: file, Path: path + ".key", Severity: "error",
				Message: fmt.Sprintf("duplicate key %q", f.Key),
			})
		}
		keys[f.Key] = true
		if other, ok := storage[f.Storage()]; ok {
			errs = append(errs, cue.ValidationError{
				File: file, Path: path + ".storage_key", Severity: "error",
				Message: fmt.Sprintf("storage key %q already used by %q", f.Storage(), other),
			})
		}
		storage[f.Storage()] = f.Key
	}
	for i, name := range r.Order {
		if _, ok := r.Lookup(name); !ok {
			errs = append(errs, cue.ValidationError{
				File: file, Path: fmt.Sprintf("order.%d", i), Severity: "warning",
				Message: fmt.Sprintf("order entry %q matches no questionnaire", name),
			})
		}
	}
	return blocking(errs)
}

// blocking returns errs only when one of them is an error. Warnings alone do
// not reject a registry.
func blocking(errs []cue.ValidationError) []cue.ValidationError {
	for _, e := range errs {
		if e.Severity == "error" {
			return errs
		}
	}
	return nil
}

// Lookup finds a form by key or by label, ignoring case and accents.
func (r *Registry) Lookup(keyOrLabel string) (Form, bool) {
	for _, f := range r.Forms {
		if f.Key == keyOrLabel {
			return f, true
		}
	}
	for _, f := range r.Forms {
		if textutil.EqualFold(f.Key, keyOrLabel) || textutil.EqualFold(f.Label, keyOrLabel) {
			return f, true
		}
	}
	return Form{}, false
}

// MustLookup is Lookup returning ErrUnknownForm.
func (r *Registry) MustLookup(keyOrLabel string) (Form, error) {
	f, ok := r.Lookup(keyOrLabel)
	if !ok {
		return Form{}, fmt.Errorf("%w: %q", ErrUnknownForm, keyOrLabel)
	}
	return f, nil
}

// WithOrder returns a copy of r using order when it is non-empty.
func (r *Registry) WithOrder(order []string) *Registry {
	if len(order) == 0 {
		return r
	}
	cp := *r
	cp.Order = append([]string(nil), order...)
	return &cp
}

// Priority is the editorial rank of f: its index in Order, or after every
// ordered form in registry order.
func (r *Registry) Priority(f Form) int {
	for i, name := range r.Order {
		if textutil.EqualFold(name, f.Key) || textutil.EqualFold(name, f.Label) {
			return i
		}
	}
	for i, candidate := range r.Forms {
		if candidate.Key == f.Key {
			return len(r.Order) + i
		}
	}
	return len(r.Order) + len(r.Forms)
}

// Sorted returns the forms in editorial order. Forms of equal priority keep
// their registry order.
func (r *Registry) Sorted() []Form {
	out := append([]Form(nil), r.Forms...)
	ranks := make(map[string]int, len(out))
	for _, f := range out {
		ranks[f.Key] = r.Priority(f)
	}
	sort.SliceStable(out, func(i, j int) bool { return ranks[out[i].Key] < ranks[out[j].Key] })
	return out
}

// Categories returns the distinct categories in registry order.
func (r *Registry) Categories() []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range r.Forms {
		if f.Category != "" && !seen[f.Category] {
			seen[f.Category] = true
			out = append(out, f.Category)
		}
	}
	return out
}

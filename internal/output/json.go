package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dotcommander/geriassess/internal/compiler"
	"github.com/dotcommander/geriassess/internal/forms"
	"github.com/dotcommander/geriassess/internal/scoring"
	"github.com/dotcommander/geriassess/internal/types"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	quiet      bool
	indent     bool
	outputFile string
	out        io.Writer
}

// NewJSONFormatter creates a new JSONFormatter
func NewJSONFormatter(quiet bool, indent bool, outputFile string) *JSONFormatter {
	return &JSONFormatter{
		quiet:      quiet,
		indent:     indent,
		outputFile: outputFile,
		out:        os.Stdout,
	}
}

// SetOutput redirects stdout output.
func (f *JSONFormatter) SetOutput(w io.Writer) {
	f.out = w
}

// JSONSummary wraps the evaluation of one questionnaire instance.
type JSONSummary struct {
	Form    string          `json:"form"`
	Label   string          `json:"label"`
	Kind    types.Kind      `json:"kind"`
	Summary scoring.Summary `json:"summary"`
}

// Format writes the payload as JSON.
func (f *JSONFormatter) Format(p *compiler.Payload) error {
	return f.encode(p)
}

// FormatSummary writes one questionnaire evaluation as JSON.
func (f *JSONFormatter) FormatSummary(form forms.Form, summary scoring.Summary) error {
	return f.encode(JSONSummary{
		Form:    form.Key,
		Label:   form.Label,
		Kind:    summary.Kind(),
		Summary: summary,
	})
}

func (f *JSONFormatter) encode(v any) error {
	if f.quiet && f.outputFile == "" {
		return nil
	}

	var data []byte
	var err error
	if f.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	return writeOutput(f.out, f.outputFile, append(data, '\n'))
}

// writeOutput writes data to outputFile, or to w when outputFile is empty.
func writeOutput(w io.Writer, outputFile string, data []byte) error {
	if outputFile != "" {
		if err := os.WriteFile(outputFile, data, 0644); err != nil {
			return fmt.Errorf("error writing to file %s: %w", outputFile, err)
		}
		return nil
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	return nil
}

package outputters

import (
	"fmt"
	"io"

	"github.com/dotcommander/geriassess/internal/compiler"
	"github.com/dotcommander/geriassess/internal/config"
	"github.com/dotcommander/geriassess/internal/forms"
	"github.com/dotcommander/geriassess/internal/output"
	"github.com/dotcommander/geriassess/internal/scoring"
	"github.com/dotcommander/geriassess/internal/types"
)

// Formatter renders compiled payloads and single evaluations.
type Formatter interface {
	Format(p *compiler.Payload) error
	FormatSummary(form forms.Form, s scoring.Summary) error
}

// FormatterFactory creates a Formatter for a format name.
type FormatterFactory interface {
	CreateFormatter(format string) (Formatter, error)
}

// DefaultFormatterFactory builds the formatters of the output package from
// the configuration. A nil out keeps the formatters on stdout.
type DefaultFormatterFactory struct {
	config *config.Config
	out    io.Writer
}

// CreateFormatter implements FormatterFactory.
func (f *DefaultFormatterFactory) CreateFormatter(format string) (Formatter, error) {
	var formatter interface {
		Formatter
		SetOutput(w io.Writer)
	}
	switch format {
	case types.FormatConsole:
		formatter = output.NewConsoleFormatter(f.config.Quiet, f.config.Verbose)
	case types.FormatJSON:
		formatter = output.NewJSONFormatter(f.config.Quiet, true, f.config.Output)
	case types.FormatMarkdown:
		formatter = output.NewMarkdownFormatter(f.config.Quiet, f.config.Verbose, f.config.Output)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if f.out != nil {
		formatter.SetOutput(f.out)
	}
	return formatter, nil
}

// Outputter handles output formatting
type Outputter struct {
	config  *config.Config
	factory FormatterFactory
}

// NewOutputter creates a new Outputter
func NewOutputter(config *config.Config) *Outputter {
	return &Outputter{
		config:  config,
		factory: &DefaultFormatterFactory{config: config},
	}
}

// NewOutputterTo creates an Outputter whose formatters write to w instead
// of stdout. Output files still take precedence.
func NewOutputterTo(config *config.Config, w io.Writer) *Outputter {
	return &Outputter{
		config:  config,
		factory: &DefaultFormatterFactory{config: config, out: w},
	}
}

// NewOutputterWithFactory creates an Outputter with a custom factory.
func NewOutputterWithFactory(config *config.Config, factory FormatterFactory) *Outputter {
	return &Outputter{
		config:  config,
		factory: factory,
	}
}

// Format renders the payload using format, or the configured format when
// format is empty.
func (o *Outputter) Format(p *compiler.Payload, format string) error {
	if p == nil {
		return fmt.Errorf("nothing to render")
	}
	formatter, err := o.factory.CreateFormatter(o.formatName(format))
	if err != nil {
		return err
	}
	return formatter.Format(p)
}

// FormatSummary renders one questionnaire evaluation.
func (o *Outputter) FormatSummary(form forms.Form, s scoring.Summary, format string) error {
	formatter, err := o.factory.CreateFormatter(o.formatName(format))
	if err != nil {
		return err
	}
	return formatter.FormatSummary(form, s)
}

func (o *Outputter) formatName(format string) string {
	if format == "" {
		return o.config.Format
	}
	return format
}

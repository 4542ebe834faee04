package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/geriassess/internal/cue"
	"github.com/dotcommander/geriassess/internal/questionnaire"
	"github.com/dotcommander/geriassess/internal/types"
)

// CompactFormatter prints one aligned line per questionnaire. It backs the
// forms listing and the check report.
type CompactFormatter struct {
	quiet    bool
	verbose  bool
	colorize bool
	out      io.Writer
}

// NewCompactFormatter creates a new CompactFormatter.
func NewCompactFormatter(quiet, verbose bool) *CompactFormatter {
	f := &CompactFormatter{quiet: quiet, verbose: verbose}
	f.SetOutput(os.Stdout)
	return f
}

// SetOutput redirects the formatter.
func (f *CompactFormatter) SetOutput(w io.Writer) {
	f.out = w
	f.colorize = isTerminal(w)
}

// FormStatus is one line of the forms listing.
type FormStatus struct {
	Key         string     `json:"key"`
	Label       string     `json:"label"`
	Category    string     `json:"category,omitempty"`
	Kind        types.Kind `json:"kind"`
	Spec        string     `json:"spec"`
	SpecPresent bool       `json:"spec_present"`
	Answered    int        `json:"answered"`
	Locked      bool       `json:"locked"`
}

// CheckResult is the outcome of parsing one questionnaire specification.
type CheckResult struct {
	Form        string                     `json:"form"`
	Spec        string                     `json:"spec"`
	Questions   int                        `json:"questions"`
	Err         string                     `json:"error,omitempty"`
	Diagnostics []questionnaire.Diagnostic `json:"diagnostics,omitempty"`
}

// Failed reports whether the specification could not be used.
func (r CheckResult) Failed() bool {
	return r.Err != "" || r.Questions == 0
}

// FormatForms prints the registry grouped by category, in the given order.
func (f *CompactFormatter) FormatForms(rows []FormStatus) error {
	if f.quiet {
		return nil
	}

	green := f.style("10")
	red := f.style("9")
	dim := f.style("8")
	bold := lipgloss.NewStyle()
	if f.colorize {
		bold = bold.Bold(true)
	}

	keyLen, labelLen := f.calculateColumnWidths(rows)

	category := "\x00"
	for _, r := range rows {
		if r.Category != category {
			category = r.Category
			name := category
			if name == "" {
				name = "Other"
			}
			fmt.Fprintf(f.out, "\n%s\n", bold.Render(name))
		}

		icon, style := "·", dim
		switch {
		case !r.SpecPresent:
			icon, style = "✗", red
		case r.Answered > 0:
			icon, style = "✓", green
		}

		status := fmt.Sprintf("%d answered", r.Answered)
		if r.Locked {
			status += ", locked"
		}
		if !r.SpecPresent {
			status = "specification missing"
		}

		fmt.Fprintf(f.out, "  %s %s  %s  %s  %s\n",
			style.Render(icon),
			padRight(r.Key, keyLen),
			padRight(r.Label, labelLen),
			dim.Render(padRight(string(r.Kind), len(types.KindDependency))),
			style.Render(status))
		if f.verbose {
			fmt.Fprintf(f.out, "      %s\n", dim.Render(r.Spec))
		}
	}
	return nil
}

// calculateColumnWidths computes the key and label column widths.
func (f *CompactFormatter) calculateColumnWidths(rows []FormStatus) (keyLen, labelLen int) {
	for _, r := range rows {
		keyLen = max(keyLen, lipgloss.Width(r.Key))
		labelLen = max(labelLen, lipgloss.Width(r.Label))
	}
	return keyLen, labelLen
}

// FormatCheck prints specification diagnostics grouped by form and a
// summary line. Registry problems are printed first.
func (f *CompactFormatter) FormatCheck(registry []cue.ValidationError, results []CheckResult, orphans []string) error {
	if f.quiet {
		return nil
	}

	red := f.style("9")
	yellow := f.style("3")
	dim := f.style("8")

	for _, e := range registry {
		style := yellow
		if e.Severity == "error" {
			style = red
		}
		fmt.Fprintf(f.out, "%s %s\n", style.Render(e.Severity), e.String())
	}

	var failed, warnings int
	for _, r := range results {
		if r.Failed() {
			failed++
		}
		shown := r.Diagnostics
		if !f.verbose {
			shown = nil
			for _, d := range r.Diagnostics {
				if d.Severity == questionnaire.DiagWarning {
					shown = append(shown, d)
				}
			}
		}
		for _, d := range r.Diagnostics {
			if d.Severity == questionnaire.DiagWarning {
				warnings++
			}
		}

		if !r.Failed() && len(shown) == 0 && !f.verbose {
			continue
		}

		fmt.Fprintf(f.out, "%s %s\n", f.statusIcon(r), r.Spec)
		if r.Err != "" {
			fmt.Fprintf(f.out, "    ✘ %s\n", red.Render(r.Err))
		} else if r.Questions == 0 {
			fmt.Fprintf(f.out, "    ✘ %s\n", red.Render("no question matches "+r.Form))
		}
		for _, d := range shown {
			style := dim
			prefix := "    · "
			if d.Severity == questionnaire.DiagWarning {
				style, prefix = yellow, "    ⚠ "
			}
			fmt.Fprintf(f.out, "%srow %d: %s\n", prefix, d.Row, style.Render(d.Message))
		}
	}

	for _, o := range orphans {
		fmt.Fprintf(f.out, "%s %s\n", yellow.Render("?"), dim.Render(o+" is not referenced by any form"))
	}

	summary := fmt.Sprintf("\n%d/%d specifications usable", len(results)-failed, len(results))
	if warnings > 0 {
		summary += fmt.Sprintf(", %d %s", warnings, Pluralize("warning", warnings))
	}
	if failed > 0 || hasBlocking(registry) {
		fmt.Fprintln(f.out, red.Render(summary))
	} else {
		fmt.Fprintln(f.out, f.style("10").Render(summary))
	}
	return nil
}

func (f *CompactFormatter) statusIcon(r CheckResult) string {
	if r.Failed() {
		return f.style("9").Render("✗")
	}
	return f.style("10").Render("✓")
}

func (f *CompactFormatter) style(color string) lipgloss.Style {
	if !f.colorize {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func hasBlocking(errs []cue.ValidationError) bool {
	for _, e := range errs {
		if e.Severity == "error" {
			return true
		}
	}
	return false
}

// Pluralize returns singular or plural form based on count.
func Pluralize(s string, count int) string {
	if count == 1 {
		return s
	}
	return s + "s"
}

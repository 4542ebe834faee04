package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dotcommander/geriassess/internal/compiler"
	"github.com/dotcommander/geriassess/internal/forms"
	"github.com/dotcommander/geriassess/internal/scoring"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	quiet      bool
	verbose    bool
	outputFile string
	out        io.Writer
}

// NewMarkdownFormatter creates a new MarkdownFormatter. An empty outputFile
// writes to stdout.
func NewMarkdownFormatter(quiet, verbose bool, outputFile string) *MarkdownFormatter {
	return &MarkdownFormatter{
		quiet:      quiet,
		verbose:    verbose,
		outputFile: outputFile,
		out:        os.Stdout,
	}
}

// SetOutput redirects stdout output.
func (f *MarkdownFormatter) SetOutput(w io.Writer) {
	f.out = w
}

// Format writes the payload as a Markdown document.
func (f *MarkdownFormatter) Format(p *compiler.Payload) error {
	return f.write(f.Render(p))
}

// FormatSummary writes one questionnaire evaluation.
func (f *MarkdownFormatter) FormatSummary(form forms.Form, summary scoring.Summary) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", form.Label)
	if summary.IsLocked() {
		b.WriteString("*Locked: only the lock question is evaluated.*\n\n")
	}

	switch s := summary.(type) {
	case *scoring.FreeListSummary:
		writeAnswerRows(&b, s.Rows())
	case *scoring.DependencySummary:
		writeDependency(&b, s.ADLScore, s.IADLScore, s.DependencyPercent)
		fmt.Fprintf(&b, "**Severity:** %s\n\n", s.Severity)
		writeReport(&b, s.Report)
		f.writeDetails(&b, s.Details)
	case *scoring.GenericSummary:
		fmt.Fprintf(&b, "**Score:** %d/100\n\n**Severity:** %s\n\n", s.Score, s.Severity)
		writeReport(&b, s.Report)
		f.writeDetails(&b, s.Details)
	default:
		return fmt.Errorf("unsupported summary type %T", summary)
	}

	return f.write(b.String())
}

// Render builds the Markdown document for p.
func (f *MarkdownFormatter) Render(p *compiler.Payload) string {
	var b strings.Builder

	b.WriteString("# Geriatric assessment report\n\n")

	if p.Empty() {
		b.WriteString("*No questionnaire answered yet.*\n")
		return b.String()
	}

	if p.FreeList != nil {
		fmt.Fprintf(&b, "## %s\n\n", p.FreeList.Label)
		writeAnswerRows(&b, p.FreeList.Rows)
	}

	if d := p.Dependency; d != nil {
		fmt.Fprintf(&b, "## %s\n\n", d.Label)
		writeDependency(&b, d.ADLScore, d.IADLScore, d.DependencyPercent)
	}

	if bars := p.ScoreBars(); len(bars) > 0 {
		b.WriteString("## Scores\n\n")
		b.WriteString("| Questionnaire | Score | Color |\n")
		b.WriteString("|---------------|-------|-------|\n")
		for _, bar := range bars {
			fmt.Fprintf(&b, "| %s | %d%% | %s |\n", escapeCell(bar.Label), bar.Percent, bar.Color)
		}
		b.WriteString("\n")
	}

	for _, s := range p.Sections {
		fmt.Fprintf(&b, "## %s\n\n", s.Label)
		writeReport(&b, s.Report)
	}

	if f.verbose {
		fmt.Fprintf(&b, "---\n\n*Fingerprint:* `%s`\n", p.Fingerprint)
	}
	return b.String()
}

func (f *MarkdownFormatter) write(doc string) error {
	if f.quiet && f.outputFile == "" {
		return nil
	}
	return writeOutput(f.out, f.outputFile, []byte(doc))
}

func (f *MarkdownFormatter) writeDetails(b *strings.Builder, details []scoring.Metric) {
	if !f.verbose || len(details) == 0 {
		return
	}
	b.WriteString("### Details\n\n")
	b.WriteString("| Question | Answer | Points |\n")
	b.WriteString("|----------|--------|--------|\n")
	for _, m := range details {
		fmt.Fprintf(b, "| %s | %s | %s |\n", escapeCell(m.Label), escapeCell(m.Answer), formatNumber(m.Points))
	}
	b.WriteString("\n")
}

func writeAnswerRows(b *strings.Builder, rows []scoring.AnswerRow) {
	if len(rows) == 0 {
		b.WriteString("*Nothing to list.*\n\n")
		return
	}
	for _, r := range rows {
		fmt.Fprintf(b, "- **%s**: %s\n", oneLine(r.Label), oneLine(r.Answer))
	}
	b.WriteString("\n")
}

func writeDependency(b *strings.Builder, adl, iadl float64, percent int) {
	b.WriteString("| Axis | Score |\n")
	b.WriteString("|------|-------|\n")
	fmt.Fprintf(b, "| ADL | %s/%s |\n", formatNumber(adl), formatNumber(scoring.ADLMax))
	fmt.Fprintf(b, "| IADL | %s/%s |\n", formatNumber(iadl), formatNumber(scoring.IADLMax))
	fmt.Fprintf(b, "| Dependency | %d%% |\n\n", percent)
}

// writeReport pairs surveillance and action items by position.
func writeReport(b *strings.Builder, r scoring.Report) {
	rows := r.Rows()
	if len(rows) == 0 {
		return
	}
	b.WriteString("| Surveillance | Actions |\n")
	b.WriteString("|--------------|---------|\n")
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", escapeCell(row.Surveillance), escapeCell(row.Action))
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(oneLine(s), "|", `\|`)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

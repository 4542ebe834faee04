package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/dotcommander/geriassess/internal/compiler"
	"github.com/dotcommander/geriassess/internal/forms"
	"github.com/dotcommander/geriassess/internal/scoring"
	"github.com/dotcommander/geriassess/internal/types"
)

// barWidth is the number of cells of a full console bar.
const barWidth = 20

// ConsoleFormatter formats output for console display
type ConsoleFormatter struct {
	quiet    bool
	verbose  bool
	colorize bool
	out      io.Writer
}

// NewConsoleFormatter creates a new ConsoleFormatter writing to stdout.
// Color is enabled only when stdout is a terminal.
func NewConsoleFormatter(quiet, verbose bool) *ConsoleFormatter {
	f := &ConsoleFormatter{quiet: quiet, verbose: verbose}
	f.SetOutput(os.Stdout)
	return f
}

// SetOutput redirects the formatter.
func (f *ConsoleFormatter) SetOutput(w io.Writer) {
	f.out = w
	f.colorize = isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// Format prints the compiled payload.
func (f *ConsoleFormatter) Format(p *compiler.Payload) error {
	if f.quiet {
		return nil
	}

	if p.Empty() {
		fmt.Fprintln(f.out, f.style("8").Render("No questionnaire answered yet."))
		return nil
	}

	fmt.Fprintln(f.out, f.title("Geriatric assessment report"))

	if p.FreeList != nil {
		f.printHeading(p.FreeList.Label)
		f.printRows(p.FreeList.Rows)
	}

	if d := p.Dependency; d != nil {
		f.printHeading(d.Label)
		f.printDependency(d.ADLScore, d.IADLScore, d.DependencyPercent)
	}

	if bars := p.ScoreBars(); len(bars) > 0 {
		f.printHeading("Scores")
		f.printBars(bars)
	}

	for _, s := range p.Sections {
		f.printHeading(s.Label)
		f.printReport(s.Report)
	}

	if f.verbose {
		fmt.Fprintf(f.out, "\n%s\n", f.style("8").Render("fingerprint "+p.Fingerprint))
	}
	return nil
}

// FormatSummary prints the evaluation of a single questionnaire instance.
func (f *ConsoleFormatter) FormatSummary(form forms.Form, summary scoring.Summary) error {
	if f.quiet {
		return nil
	}

	heading := form.Label
	if summary.IsLocked() {
		heading += " " + f.style("3").Render("(locked)")
	}
	fmt.Fprintln(f.out, f.title(heading))

	switch s := summary.(type) {
	case *scoring.FreeListSummary:
		rows := s.Rows()
		if len(rows) == 0 {
			fmt.Fprintln(f.out, "  nothing to list")
		}
		f.printRows(rows)

	case *scoring.DependencySummary:
		f.printDependency(s.ADLScore, s.IADLScore, s.DependencyPercent)
		f.printSeverity(s.Severity)
		f.printReport(s.Report)
		f.printDetails(s.Details)

	case *scoring.GenericSummary:
		f.printBars([]compiler.Bar{{Label: "Score", Percent: s.Score, Color: types.BarColorOf(s.Severity)}})
		if s.Score <= 0 {
			fmt.Fprintln(f.out, "  score 0")
		}
		f.printSeverity(s.Severity)
		f.printReport(s.Report)
		f.printDetails(s.Details)

	default:
		return fmt.Errorf("unsupported summary type %T", summary)
	}
	return nil
}

func (f *ConsoleFormatter) style(color string) lipgloss.Style {
	if !f.colorize {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func (f *ConsoleFormatter) title(s string) string {
	if !f.colorize {
		return s
	}
	return lipgloss.NewStyle().Bold(true).Render(s)
}

func (f *ConsoleFormatter) printHeading(s string) {
	fmt.Fprintf(f.out, "\n%s\n", f.title(s))
}

func (f *ConsoleFormatter) printRows(rows []scoring.AnswerRow) {
	for _, r := range rows {
		fmt.Fprintf(f.out, "  • %s: %s\n", r.Label, r.Answer)
	}
}

func (f *ConsoleFormatter) printDependency(adl, iadl float64, percent int) {
	fmt.Fprintf(f.out, "  ADL         %s/%s\n", formatNumber(adl), formatNumber(scoring.ADLMax))
	fmt.Fprintf(f.out, "  IADL        %s/%s\n", formatNumber(iadl), formatNumber(scoring.IADLMax))
	fmt.Fprintf(f.out, "  Dependency  %d%%\n", percent)
}

func (f *ConsoleFormatter) printSeverity(s types.Severity) {
	fmt.Fprintf(f.out, "  Severity    %s\n", f.style(colorCode(types.BarColorOf(s))).Render(string(s)))
}

func (f *ConsoleFormatter) printBars(bars []compiler.Bar) {
	width := 0
	for _, b := range bars {
		width = max(width, lipgloss.Width(b.Label))
	}
	for _, b := range bars {
		if b.Percent <= 0 {
			continue
		}
		pad := strings.Repeat(" ", width-lipgloss.Width(b.Label))
		bar := f.style(colorCode(b.Color)).Render(renderBar(b.Percent))
		fmt.Fprintf(f.out, "  %s%s  %s %3d%%\n", b.Label, pad, bar, b.Percent)
	}
}

func (f *ConsoleFormatter) printReport(r scoring.Report) {
	rows := r.Rows()
	if len(rows) == 0 {
		return
	}

	left := lipgloss.Width("Surveillance")
	for _, row := range rows {
		left = max(left, lipgloss.Width(row.Surveillance))
	}

	header := fmt.Sprintf("  %s │ %s", padRight("Surveillance", left), "Actions")
	fmt.Fprintln(f.out, f.style("8").Render(header))
	fmt.Fprintln(f.out, f.style("8").Render("  "+strings.Repeat("─", left)+"─┼─"+strings.Repeat("─", 12)))
	for _, row := range rows {
		fmt.Fprintf(f.out, "  %s │ %s\n", padRight(row.Surveillance, left), row.Action)
	}
}

func (f *ConsoleFormatter) printDetails(details []scoring.Metric) {
	if !f.verbose || len(details) == 0 {
		return
	}
	dim := f.style("8")
	for _, m := range details {
		axis := ""
		if m.Axis != "" {
			axis = " [" + m.Axis + "]"
		}
		fmt.Fprintln(f.out, dim.Render(fmt.Sprintf("    %s = %s (%s)%s", m.Label, m.Answer, formatNumber(m.Points), axis)))
	}
}

// renderBar draws percent on barWidth cells.
func renderBar(percent int) string {
	percent = min(max(percent, 0), 100)
	filled := (percent*barWidth + 50) / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func colorCode(c types.BarColor) string {
	switch c {
	case types.BarColor(types.SeverityGreen):
		return "10"
	case types.BarColor(types.SeverityOrange):
		return "208"
	case types.BarColor(types.SeverityRed):
		return "9"
	case types.BarBlack:
		return "15"
	default:
		return "7"
	}
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

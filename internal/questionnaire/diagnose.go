package questionnaire

import (
	"fmt"
	"math"
	"strings"

	"github.com/dotcommander/geriassess/internal/textutil"
)

// Diagnostic is an advisory note about a specification row. Parsing never
// fails; diagnostics explain which permissive default was applied.
type Diagnostic struct {
	Row      int    `json:"row"` // 1-based data row, header excluded
	Question string `json:"question,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // warning or info
}

// Diagnostic severities.
const (
	DiagWarning = "warning"
	DiagInfo    = "info"
)

// Diagnose reports the defaults Parse applies to rows selected by target.
func Diagnose(rows []Row, target string) []Diagnostic {
	var out []Diagnostic
	add := func(row int, r Row, severity, format string, args ...any) {
		out = append(out, Diagnostic{
			Row:      row,
			Question: strings.TrimSpace(r.Question),
			Message:  fmt.Sprintf(format, args...),
			Severity: severity,
		})
	}

	for i, r := range rows {
		n := i + 1
		if !matchesTarget(r, target) {
			continue
		}
		if !isUsable(r) {
			add(n, r, DiagWarning, "row dropped: no question text, options or information type")
			continue
		}
		if !isKnownType(r.Type) {
			add(n, r, DiagWarning, "unknown type %q, using %s", r.Type, DefaultType)
		}
		if !isKnownRole(r.Role) {
			add(n, r, DiagWarning, "unknown role %q ignored", r.Role)
		}
		if strings.TrimSpace(r.Role) == "" && isReviewLabel(r.Question) {
			add(n, r, DiagInfo, "role set to lock from the review label")
		}
		if strings.TrimSpace(r.Question) == "" && strings.TrimSpace(r.Options) != "" {
			add(n, r, DiagInfo, "label synthesized as %q", synthesizeLabel(r.Options))
		}
		if v, ok := parsePosition(r.Position); !ok && strings.TrimSpace(r.Position) != "" {
			add(n, r, DiagWarning, "position %q is not a number", r.Position)
		} else if ok && v != math.Trunc(v) {
			add(n, r, DiagWarning, "position %q is not a whole number, rounded to %d", strings.TrimSpace(r.Position), int(math.Round(v)))
		}
		for _, entry := range textutil.ParseList(r.Options) {
			if strings.Contains(entry, ":") && ParseOption(entry).Score == nil {
				add(n, r, DiagWarning, "option %q has no numeric score", entry)
			}
		}
	}
	return out
}

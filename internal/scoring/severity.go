package scoring

import (
	"strings"

	"github.com/dotcommander/geriassess/internal/answers"
	"github.com/dotcommander/geriassess/internal/questionnaire"
	"github.com/dotcommander/geriassess/internal/textutil"
	"github.com/dotcommander/geriassess/internal/types"
)

// DefaultQualityPhrases locate the quality-of-care question when no question
// carries the color role.
var DefaultQualityPhrases = []string{"quality of current care", "qualite de la prise en charge"}

// severityMarkers are checked in order against the normalized answer.
var severityMarkers = []struct {
	severity types.Severity
	markers  []string
}{
	{types.SeverityGreen, []string{"good", "bonne"}},
	{types.SeverityOrange, []string{"partial", "partielle"}},
	{types.SeverityRed, []string{"insufficient", "insuffisante"}},
}

// QualityQuestion returns the question driving severity: the first one with
// the color role, else the first whose label contains a quality phrase.
func QualityQuestion(applicable []questionnaire.Question, opts Options) (questionnaire.Question, bool) {
	for _, q := range applicable {
		if q.Role == questionnaire.RoleColor {
			return q, true
		}
	}
	phrases := DefaultQualityPhrases
	if strings.TrimSpace(opts.QualityPhrase) != "" {
		phrases = []string{opts.QualityPhrase}
	}
	for _, q := range applicable {
		for _, p := range phrases {
			if textutil.ContainsFold(q.Label, p) {
				return q, true
			}
		}
	}
	return questionnaire.Question{}, false
}

// Classify maps the quality-of-care answer to a severity. Absent or
// unanswered questions are grey.
func Classify(applicable []questionnaire.Question, a answers.Answers, opts Options) types.Severity {
	q, ok := QualityQuestion(applicable, opts)
	if !ok {
		return types.SeverityGrey
	}
	values := EffectiveAnswer(q, a)
	if len(values) == 0 {
		return types.SeverityGrey
	}
	answer := textutil.Norm(strings.Join(values, " "))
	for _, sm := range severityMarkers {
		for _, m := range sm.markers {
			if strings.Contains(answer, m) {
				return sm.severity
			}
		}
	}
	return types.SeverityGrey
}

package scoring

import (
	"math"
	"strings"

	"github.com/dotcommander/geriassess/internal/questionnaire"
)

// OptionPoints sums the scores of the raw options matching values. Values
// without a matching option, or options without a score, count 0.
func OptionPoints(q questionnaire.Question, values []string) float64 {
	var total float64
	for _, v := range values {
		if opt, ok := q.FindOption(v); ok {
			total += opt.Points()
		}
	}
	return total
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ClampPercent rounds v to the nearest integer and bounds it to [0, 100].
func ClampPercent(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(Clamp(math.Round(v), 0, 100))
}

func joinValues(values []string) string {
	return strings.Join(values, ", ")
}

package scoring

import (
	"github.com/dotcommander/geriassess/internal/questionnaire"
)

// GenericScorer sums selected option points into a 0-100 score.
type GenericScorer struct{}

// NewGenericScorer creates a new GenericScorer
func NewGenericScorer() *GenericScorer {
	return &GenericScorer{}
}

// Score evaluates a generic questionnaire. Only recorded answers score;
// implicit "No" answers never add points.
func (s *GenericScorer) Score(in Input) Summary {
	locked := Locked(in.Questions, in.Answers)
	applicable := Applicable(in.Questions, locked)

	var total float64
	var details []Metric
	for _, q := range applicable {
		if q.Type == questionnaire.TypeInformation {
			continue
		}
		values := in.Answers.Values(q.ID)
		if len(values) == 0 {
			continue
		}
		points := OptionPoints(q, values)
		total += points
		details = append(details, Metric{
			QuestionID: q.ID,
			Label:      q.Label,
			Answer:     joinValues(values),
			Points:     points,
		})
	}

	return &GenericSummary{
		Score:    ClampPercent(total),
		Severity: Classify(applicable, in.Answers, in.Options),
		Report:   BuildReport(applicable, in.Answers),
		Locked:   locked,
		Details:  details,
	}
}

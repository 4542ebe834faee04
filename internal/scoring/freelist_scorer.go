package scoring

import (
	"github.com/dotcommander/geriassess/internal/questionnaire"
)

// FreeListScorer lists answers into frequency and other rows.
type FreeListScorer struct{}

// NewFreeListScorer creates a new FreeListScorer
func NewFreeListScorer() *FreeListScorer {
	return &FreeListScorer{}
}

// Score evaluates a free-list questionnaire. "No" values and lock questions
// are never listed.
func (s *FreeListScorer) Score(in Input) Summary {
	locked := Locked(in.Questions, in.Answers)
	out := &FreeListSummary{
		FrequencyRows: []AnswerRow{},
		OtherRows:     []AnswerRow{},
		Locked:        locked,
	}

	for _, q := range Applicable(in.Questions, locked) {
		if q.Role == questionnaire.RoleLock || !q.HasAnswer() {
			continue
		}
		var values []string
		for _, v := range in.Answers.Values(q.ID) {
			if !questionnaire.IsNo(v) {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		row := AnswerRow{QuestionID: q.ID, Label: q.Label, Answer: joinValues(values)}
		if q.Role == questionnaire.RoleFreq {
			out.FrequencyRows = append(out.FrequencyRows, row)
		} else {
			out.OtherRows = append(out.OtherRows, row)
		}
	}
	return out
}

// Rows returns frequency rows followed by other rows.
func (s *FreeListSummary) Rows() []AnswerRow {
	rows := make([]AnswerRow, 0, len(s.FrequencyRows)+len(s.OtherRows))
	rows = append(rows, s.FrequencyRows...)
	return append(rows, s.OtherRows...)
}

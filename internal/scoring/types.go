// Package scoring evaluates a questionnaire instance: lock state, scores,
// severity and the two-column clinical report.
package scoring

import (
	"github.com/dotcommander/geriassess/internal/answers"
	"github.com/dotcommander/geriassess/internal/questionnaire"
	"github.com/dotcommander/geriassess/internal/types"
)

// Dependency axes maxima. These are clinical constants.
const (
	ADLMax  = 6.0
	IADLMax = 8.0
)

// Summary is the result of evaluating one questionnaire instance. It is
// implemented by *FreeListSummary, *DependencySummary and *GenericSummary
// only.
type Summary interface {
	Kind() types.Kind
	IsLocked() bool
	summary()
}

// Metric records what one question contributed to a score.
type Metric struct {
	QuestionID string  `json:"question_id"`
	Label      string  `json:"label"`
	Answer     string  `json:"answer"`
	Points     float64 `json:"points"`
	Axis       string  `json:"axis,omitempty"` // adl or iadl for dependency metrics
}

// AnswerRow is one label/answer pair of a free-list listing.
type AnswerRow struct {
	QuestionID string `json:"question_id"`
	Label      string `json:"label"`
	Answer     string `json:"answer"`
}

// FreeListSummary lists answered questions without scoring them.
type FreeListSummary struct {
	FrequencyRows []AnswerRow `json:"frequency_rows"`
	OtherRows     []AnswerRow `json:"other_rows"`
	Locked        bool        `json:"locked"`
}

// DependencySummary holds the ADL/IADL axes and the composite percentage.
type DependencySummary struct {
	ADLScore          float64        `json:"adl_score"`
	ADLMax            float64        `json:"adl_max"`
	IADLScore         float64        `json:"iadl_score"`
	IADLMax           float64        `json:"iadl_max"`
	DependencyPercent int            `json:"dependency_percent"`
	Severity          types.Severity `json:"severity"`
	Report            Report         `json:"report"`
	Locked            bool           `json:"locked"`
	Details           []Metric       `json:"details,omitempty"`
}

// GenericSummary is a single 0-100 score with severity and report.
type GenericSummary struct {
	Score    int            `json:"score"`
	Severity types.Severity `json:"severity"`
	Report   Report         `json:"report"`
	Locked   bool           `json:"locked"`
	Details  []Metric       `json:"details,omitempty"`
}

func (*FreeListSummary) Kind() types.Kind   { return types.KindFreeList }
func (*DependencySummary) Kind() types.Kind { return types.KindDependency }
func (*GenericSummary) Kind() types.Kind    { return types.KindGeneric }

func (s *FreeListSummary) IsLocked() bool   { return s.Locked }
func (s *DependencySummary) IsLocked() bool { return s.Locked }
func (s *GenericSummary) IsLocked() bool    { return s.Locked }

func (*FreeListSummary) summary()   {}
func (*DependencySummary) summary() {}
func (*GenericSummary) summary()    {}

// Options tunes evaluation.
type Options struct {
	// QualityPhrase replaces the default labels searched for the
	// quality-of-care question when no question carries the color role.
	QualityPhrase string
}

// Input is everything a scorer needs. Scorers never mutate it.
type Input struct {
	Questions []questionnaire.Question
	Answers   answers.Answers
	Options   Options
}

// Scorer is the interface for questionnaire kind scorers.
type Scorer interface {
	Score(in Input) Summary
}

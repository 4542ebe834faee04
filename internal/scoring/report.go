package scoring

import (
	"github.com/dotcommander/geriassess/internal/answers"
	"github.com/dotcommander/geriassess/internal/questionnaire"
	"github.com/dotcommander/geriassess/internal/textutil"
)

// Report is the two-column clinical report of an instance.
type Report struct {
	Surveillance []string `json:"surveillance"`
	Action       []string `json:"action"`
}

// ReportRow is one rendered line of a report table.
type ReportRow struct {
	Surveillance string `json:"surveillance"`
	Action       string `json:"action"`
}

// Empty reports whether both columns are empty.
func (r Report) Empty() bool {
	return len(r.Surveillance) == 0 && len(r.Action) == 0
}

// Rows pairs Surveillance[i] with Action[i]. The shorter column is padded
// with blank cells.
func (r Report) Rows() []ReportRow {
	n := max(len(r.Surveillance), len(r.Action))
	rows := make([]ReportRow, n)
	for i := range rows {
		if i < len(r.Surveillance) {
			rows[i].Surveillance = r.Surveillance[i]
		}
		if i < len(r.Action) {
			rows[i].Action = r.Action[i]
		}
	}
	return rows
}

// adlDecline answers always report on ADL questions.
var adlDecline = []string{"partial help", "dependent", "aide partielle", "dependant"}

// orderedSet keeps first-insertion order and drops duplicates.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{}), items: []string{}}
}

func (s *orderedSet) add(items ...string) {
	for _, it := range items {
		if _, ok := s.seen[it]; ok {
			continue
		}
		s.seen[it] = struct{}{}
		s.items = append(s.items, it)
	}
}

// Merge appends the items of other not already present in r.
func (r Report) Merge(other Report) Report {
	surv, act := newOrderedSet(), newOrderedSet()
	surv.add(r.Surveillance...)
	surv.add(other.Surveillance...)
	act.add(r.Action...)
	act.add(other.Action...)
	return Report{Surveillance: surv.items, Action: act.items}
}

// reportTriggered reports whether q contributes its items for values.
func reportTriggered(q questionnaire.Question, values []string) bool {
	if Triggered(q.ReportTriggers, values) {
		return true
	}
	if !IsADL(q) {
		return false
	}
	for _, v := range values {
		if textutil.EqualsAny(v, adlDecline...) {
			return true
		}
	}
	return false
}

// BuildReport aggregates the report of the applicable questions.
func BuildReport(applicable []questionnaire.Question, a answers.Answers) Report {
	surv, act := newOrderedSet(), newOrderedSet()
	for _, q := range applicable {
		if !q.HasAnswer() {
			continue
		}
		if !reportTriggered(q, EffectiveAnswer(q, a)) {
			continue
		}
		surv.add(q.SurveillanceItems...)
		act.add(q.ActionItems...)
	}
	return Report{Surveillance: surv.items, Action: act.items}
}

package scoring

import (
	"github.com/dotcommander/geriassess/internal/answers"
	"github.com/dotcommander/geriassess/internal/questionnaire"
	"github.com/dotcommander/geriassess/internal/textutil"
)

// implicitNo is the value inferred for unanswered binary questions.
const implicitNo = "No"

// EffectiveAnswer returns the values used for evaluation: the recorded
// values, or "No" for an unanswered single-choice Yes/No question.
func EffectiveAnswer(q questionnaire.Question, a answers.Answers) []string {
	if v := a.Values(q.ID); len(v) > 0 {
		return v
	}
	if q.Type == questionnaire.TypeMultiChoice || !questionnaire.IsBinary(q.RawOptions) {
		return nil
	}
	return []string{implicitNo}
}

// Triggered reports whether values match triggers. The wildcard matches any
// non-empty answer.
func Triggered(triggers, values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, t := range triggers {
		if t == questionnaire.Wildcard {
			return true
		}
		for _, v := range values {
			if textutil.EqualFold(t, v) {
				return true
			}
		}
	}
	return false
}

// Locked reports whether any lock question's effective answer matches its
// lock triggers.
func Locked(questions []questionnaire.Question, a answers.Answers) bool {
	for _, q := range questions {
		if q.Role != questionnaire.RoleLock {
			continue
		}
		if Triggered(q.LockTriggers, EffectiveAnswer(q, a)) {
			return true
		}
	}
	return false
}

// Applicable returns the questions evaluated for the given lock state: every
// question, or only the lock questions when locked.
func Applicable(questions []questionnaire.Question, locked bool) []questionnaire.Question {
	if !locked {
		return questions
	}
	var out []questionnaire.Question
	for _, q := range questions {
		if q.Role == questionnaire.RoleLock {
			out = append(out, q)
		}
	}
	return out
}

var (
	adlMarkers   = []string{"autonomy for", "autonomie pour"}
	iadlKeywords = []string{
		"telephone", "shopping", "meal preparation", "housekeeping",
		"laundry", "transportation", "medication management", "finances",
		// labels of the French sheets
		"courses", "repas", "menage", "lessive", "transport", "medicament", "finance",
	}
)

// IsADL reports whether q belongs to the Activities of Daily Living family.
func IsADL(q questionnaire.Question) bool {
	if textutil.EqualFold(q.Section, "adl") {
		return true
	}
	for _, m := range adlMarkers {
		if textutil.ContainsFold(q.Label, m) {
			return true
		}
	}
	return false
}

// IsIADL reports whether q belongs to the Instrumental ADL family. A
// question already classified as ADL is never IADL.
func IsIADL(q questionnaire.Question) bool {
	if IsADL(q) {
		return false
	}
	if textutil.EqualFold(q.Section, "iadl") {
		return true
	}
	for _, k := range iadlKeywords {
		if textutil.ContainsFold(q.Label, k) {
			return true
		}
	}
	return false
}

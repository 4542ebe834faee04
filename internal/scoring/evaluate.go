package scoring

import (
	"errors"
	"fmt"

	"github.com/dotcommander/geriassess/internal/answers"
	"github.com/dotcommander/geriassess/internal/questionnaire"
	"github.com/dotcommander/geriassess/internal/types"
)

// ErrUnknownKind is returned for a questionnaire kind without a scorer.
var ErrUnknownKind = errors.New("unknown questionnaire kind")

var scorers = map[types.Kind]Scorer{
	types.KindFreeList:   NewFreeListScorer(),
	types.KindDependency: NewDependencyScorer(),
	types.KindGeneric:    NewGenericScorer(),
}

// ScorerFor returns the scorer of kind.
func ScorerFor(kind types.Kind) (Scorer, error) {
	s, ok := scorers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return s, nil
}

// Evaluate computes the Summary of one questionnaire instance. Live sessions
// and persisted answers go through this same function.
func Evaluate(kind types.Kind, questions []questionnaire.Question, a answers.Answers, opts Options) (Summary, error) {
	s, err := ScorerFor(kind)
	if err != nil {
		return nil, err
	}
	if a == nil {
		a = answers.Answers{}
	}
	return s.Score(Input{Questions: questions, Answers: a, Options: opts}), nil
}

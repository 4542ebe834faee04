// Package session holds the live state of the questionnaire instance being
// answered.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dotcommander/geriassess/internal/answers"
	"github.com/dotcommander/geriassess/internal/forms"
	"github.com/dotcommander/geriassess/internal/questionnaire"
	"github.com/dotcommander/geriassess/internal/scoring"
)

// Answer validation errors.
var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrNotAnswerable   = errors.New("question takes no answer")
	ErrInvalidValue    = errors.New("value is not an option of the question")
	ErrTooManyValues   = errors.New("question takes a single value")
)

// Session is one questionnaire instance with its answers. Every change is
// written to the store before Set or Clear returns.
type Session struct {
	Form      forms.Form
	Questions []questionnaire.Question

	answers answers.Answers
	store   answers.Store
	index   map[string]int
}

// Open activates a form: legacy records are migrated once, then the
// persisted answers are loaded. A form without a record starts empty.
func Open(ctx context.Context, store answers.Store, form forms.Form, questions []questionnaire.Question) (*Session, error) {
	if _, err := answers.Migrate(ctx, store, form.Storage(), form.LegacyKeys); err != nil {
		return nil, fmt.Errorf("failed to migrate answers of %s: %w", form.Key, err)
	}

	loaded, err := store.Load(ctx, form.Storage())
	switch {
	case errors.Is(err, answers.ErrNotFound):
		loaded = answers.Answers{}
	case err != nil:
		return nil, err
	}

	s := &Session{
		Form:      form,
		Questions: questions,
		answers:   loaded,
		store:     store,
		index:     make(map[string]int, len(questions)),
	}
	for i, q := range questions {
		s.index[q.ID] = i
	}
	return s, nil
}

// Question returns the question with id.
func (s *Session) Question(id string) (questionnaire.Question, bool) {
	i, ok := s.index[id]
	if !ok {
		return questionnaire.Question{}, false
	}
	return s.Questions[i], true
}

// Answers returns a copy of the current answers.
func (s *Session) Answers() answers.Answers {
	return s.answers.Clone()
}

// Set records values for question id and persists the instance. No values
// removes the answer.
func (s *Session) Set(ctx context.Context, id string, values ...string) error {
	q, ok := s.Question(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}
	if !q.HasAnswer() {
		return fmt.Errorf("%w: %s", ErrNotAnswerable, id)
	}

	var kept []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	for i, v := range kept {
		if !q.AllowsValue(v) {
			return fmt.Errorf("%w: %q for %s", ErrInvalidValue, v, id)
		}
		// store the option's own spelling
		if opt, ok := q.FindOption(v); ok {
			kept[i] = opt.Label
		}
	}

	next := s.answers.Clone()
	switch {
	case len(kept) == 0:
		next.Delete(id)
	case q.Type == questionnaire.TypeMultiChoice:
		next.Set(id, answers.Multi(kept...))
	case len(kept) > 1:
		return fmt.Errorf("%w: %s", ErrTooManyValues, id)
	default:
		next.Set(id, answers.Single(kept[0]))
	}

	if err := s.store.Save(ctx, s.Form.Storage(), next); err != nil {
		return err
	}
	s.answers = next
	return nil
}

// Clear wipes the answers and deletes the persisted record.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.Form.Storage()); err != nil {
		return err
	}
	s.answers = answers.Answers{}
	return nil
}

// Locked reports the current lock state.
func (s *Session) Locked() bool {
	return scoring.Locked(s.Questions, s.answers)
}

// Evaluate computes the Summary of the instance.
func (s *Session) Evaluate(opts scoring.Options) (scoring.Summary, error) {
	return scoring.Evaluate(s.Form.Kind, s.Questions, s.answers, opts)
}

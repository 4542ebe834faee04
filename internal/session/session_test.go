package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/geriassess/internal/answers"
	"github.com/dotcommander/geriassess/internal/forms"
	"github.com/dotcommander/geriassess/internal/questionnaire"
	"github.com/dotcommander/geriassess/internal/scoring"
	"github.com/dotcommander/geriassess/internal/types"
)

var isolation = forms.Form{
	Key:        "iso",
	Label:      "Isolation",
	Kind:       types.KindGeneric,
	Spec:       "isolation.csv",
	LegacyKeys: []string{"geriatrie.form.isolement.v1"},
}

func isolationQuestions() []questionnaire.Question {
	return questionnaire.Parse([]questionnaire.Row{
		{Position: "1", Question: "To review", Options: "Yes|No", Surveillance: "Geriatric review", TriggerReportOn: "Yes"},
		{Position: "2", Question: "Lives alone", Options: "Yes:10|No:0", TriggerReportOn: "Yes", Surveillance: "Social isolation"},
		{Position: "3", Question: "Outings", Type: "multi-choice", Options: "Market:1|Church:1|Club:1"},
		{Position: "4", Question: "Notes", Type: "textarea"},
		{Position: "5", Question: "Section header", Type: "information"},
	}, "Isolation")
}

func open(t *testing.T, store answers.Store) *Session {
	t.Helper()
	s, err := Open(context.Background(), store, isolation, isolationQuestions())
	require.NoError(t, err)
	return s
}

func TestSetPersists(t *testing.T) {
	ctx := context.Background()
	store := answers.NewMemoryStore()
	s := open(t, store)

	require.NoError(t, s.Set(ctx, "isolation.02.lives-alone", "yes"))
	require.NoError(t, s.Set(ctx, "isolation.03.outings", "market", "Club"))
	require.NoError(t, s.Set(ctx, "isolation.04.notes", "Daughter visits on Sundays"))

	saved, err := store.Load(ctx, "form.iso.v2")
	require.NoError(t, err)
	assert.Equal(t, []string{"Yes"}, saved.Values("isolation.02.lives-alone"), "option spelling is stored")
	assert.Equal(t, []string{"Market", "Club"}, saved.Values("isolation.03.outings"))
	assert.Equal(t, s.Answers(), saved)

	reopened := open(t, store)
	assert.Equal(t, s.Answers(), reopened.Answers())
}

func TestSetRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	s := open(t, answers.NewMemoryStore())

	assert.ErrorIs(t, s.Set(ctx, "isolation.99.nope", "Yes"), ErrUnknownQuestion)
	assert.ErrorIs(t, s.Set(ctx, "isolation.05.section-header", "x"), ErrNotAnswerable)
	assert.ErrorIs(t, s.Set(ctx, "isolation.02.lives-alone", "Sometimes"), ErrInvalidValue)
	assert.ErrorIs(t, s.Set(ctx, "isolation.02.lives-alone", "Yes", "No"), ErrTooManyValues)
	assert.Empty(t, s.Answers())
}

func TestSetWithoutValuesUnsets(t *testing.T) {
	ctx := context.Background()
	s := open(t, answers.NewMemoryStore())

	require.NoError(t, s.Set(ctx, "isolation.02.lives-alone", "No"))
	require.NoError(t, s.Set(ctx, "isolation.02.lives-alone"))
	assert.Empty(t, s.Answers())
}

func TestLockedIsRecomputed(t *testing.T) {
	ctx := context.Background()
	s := open(t, answers.NewMemoryStore())
	assert.False(t, s.Locked())

	require.NoError(t, s.Set(ctx, "isolation.01.to-review", "Yes"))
	assert.True(t, s.Locked())

	require.NoError(t, s.Set(ctx, "isolation.01.to-review", "No"))
	assert.False(t, s.Locked())
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := answers.NewMemoryStore()
	s := open(t, store)
	require.NoError(t, s.Set(ctx, "isolation.02.lives-alone", "Yes"))

	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, s.Answers())
	_, err := store.Load(ctx, "form.iso.v2")
	assert.ErrorIs(t, err, answers.ErrNotFound)
}

func TestOpenMigratesLegacyRecord(t *testing.T) {
	ctx := context.Background()
	store := answers.NewMemoryStore()
	require.NoError(t, store.Save(ctx, "geriatrie.form.isolement.v1", answers.Answers{
		"isolation.02.lives-alone": answers.Single("Yes"),
	}))

	s := open(t, store)
	assert.Equal(t, []string{"Yes"}, s.Answers().Values("isolation.02.lives-alone"))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"form.iso.v2"}, keys)
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()
	s := open(t, answers.NewMemoryStore())
	require.NoError(t, s.Set(ctx, "isolation.02.lives-alone", "Yes"))
	require.NoError(t, s.Set(ctx, "isolation.03.outings", "Market", "Church"))

	sum, err := s.Evaluate(scoring.Options{})
	require.NoError(t, err)
	g, ok := sum.(*scoring.GenericSummary)
	require.True(t, ok)
	assert.Equal(t, 12, g.Score)
	assert.Equal(t, []string{"Social isolation"}, g.Report.Surveillance)
}

// Package compiler merges the evaluation of every questionnaire instance
// into one report payload.
package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dotcommander/geriassess/internal/answers"
	"github.com/dotcommander/geriassess/internal/forms"
	"github.com/dotcommander/geriassess/internal/questionnaire"
	"github.com/dotcommander/geriassess/internal/scoring"
	"github.com/dotcommander/geriassess/internal/session"
	"github.com/dotcommander/geriassess/internal/types"
)

// ErrUntouched is returned by CompileForm for an instance without answers.
var ErrUntouched = errors.New("questionnaire has no answers")

// Compiler builds payloads from the registry, the specification loader and
// the answer store.
type Compiler struct {
	registry *forms.Registry
	loader   forms.Loader
	store    answers.Store
	opts     scoring.Options
	logger   zerolog.Logger
}

// New creates a Compiler.
func New(registry *forms.Registry, loader forms.Loader, store answers.Store, opts scoring.Options, logger zerolog.Logger) *Compiler {
	return &Compiler{
		registry: registry,
		loader:   loader,
		store:    store,
		opts:     opts,
		logger:   logger.With().Str("component", "compiler").Logger(),
	}
}

// Compile evaluates every form in editorial order. Forms with a session in
// live are evaluated from it; the others are rebuilt from the store. An
// instance that cannot be evaluated is left out and logged; only context
// cancellation aborts the compilation.
func (c *Compiler) Compile(ctx context.Context, live map[string]*session.Session) (*Payload, error) {
	p := &Payload{Generics: []GenericSection{}, Sections: []ReportSection{}}

	for _, form := range c.registry.Sorted() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		summary, err := c.CompileForm(ctx, form, live[form.Key])
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, ErrUntouched):
			c.logger.Debug().Str("form", form.Key).Msg("no answers, skipped")
			continue
		default:
			c.logger.Warn().Err(err).Str("form", form.Key).Msg("questionnaire omitted from report")
			continue
		}

		c.add(p, form, summary)
	}

	if err := p.seal(); err != nil {
		return nil, err
	}
	return p, nil
}

// CompileForm evaluates one instance from its live session, or from the
// store when s is nil.
func (c *Compiler) CompileForm(ctx context.Context, form forms.Form, s *session.Session) (scoring.Summary, error) {
	if s != nil {
		if len(s.Answers()) == 0 {
			return nil, ErrUntouched
		}
		return s.Evaluate(c.opts)
	}

	a, err := c.persisted(ctx, form)
	if err != nil {
		return nil, err
	}
	questions, err := c.loader.Load(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("failed to load specification: %w", err)
	}
	return scoring.Evaluate(form.Kind, questions, a, c.opts)
}

func (c *Compiler) persisted(ctx context.Context, form forms.Form) (answers.Answers, error) {
	if moved, err := answers.Migrate(ctx, c.store, form.Storage(), form.LegacyKeys); err != nil {
		return nil, err
	} else if moved {
		c.logger.Info().Str("form", form.Key).Msg("migrated legacy answers")
	}

	a, err := c.store.Load(ctx, form.Storage())
	if errors.Is(err, answers.ErrNotFound) {
		return nil, ErrUntouched
	}
	if err != nil {
		return nil, err
	}
	if len(a) == 0 {
		return nil, ErrUntouched
	}
	return a, nil
}

// add places a summary in the payload. Sections with nothing to say are
// dropped and scores are clamped again.
func (c *Compiler) add(p *Payload, form forms.Form, summary scoring.Summary) {
	switch s := summary.(type) {
	case *scoring.FreeListSummary:
		rows := s.Rows()
		if len(rows) == 0 {
			return
		}
		if p.FreeList != nil {
			c.logger.Warn().Str("form", form.Key).Msg("second free-list questionnaire ignored")
			return
		}
		p.FreeList = &FreeListSection{Key: form.Key, Label: form.Label, Rows: rows}

	case *scoring.DependencySummary:
		adl := scoring.Clamp(s.ADLScore, 0, scoring.ADLMax)
		iadl := scoring.Clamp(s.IADLScore, 0, scoring.IADLMax)
		dep := &DependencySection{
			Key:               form.Key,
			Label:             form.Label,
			ADLScore:          adl,
			ADLMax:            scoring.ADLMax,
			IADLScore:         iadl,
			IADLMax:           scoring.IADLMax,
			DependencyPercent: scoring.DependencyPercent(adl, iadl),
			Severity:          s.Severity,
			Report:            s.Report,
		}
		bars := []Bar{
			{Label: "ADL", Percent: scoring.ClampPercent(adl / scoring.ADLMax * 100), Color: types.BarBlack},
			{Label: "IADL", Percent: scoring.ClampPercent(iadl / scoring.IADLMax * 100), Color: types.BarBlack},
		}
		if dep.Report.Empty() && dep.DependencyPercent <= 0 && bars[0].Percent <= 0 && bars[1].Percent <= 0 {
			return
		}
		if p.Dependency != nil {
			c.logger.Warn().Str("form", form.Key).Msg("second dependency questionnaire ignored")
			return
		}
		p.Dependency = dep
		p.ExtraBars = append(p.ExtraBars, bars...)
		if !dep.Report.Empty() {
			p.Sections = append(p.Sections, ReportSection{Label: form.Label, Report: dep.Report})
		}

	case *scoring.GenericSummary:
		score := scoring.ClampPercent(float64(s.Score))
		if score <= 0 && s.Report.Empty() {
			return
		}
		p.Generics = append(p.Generics, GenericSection{
			Key:      form.Key,
			Label:    form.Label,
			Score:    score,
			Severity: s.Severity,
			Report:   s.Report,
		})
		if !s.Report.Empty() {
			p.Sections = append(p.Sections, ReportSection{Label: form.Label, Report: s.Report})
		}

	default:
		c.logger.Error().Str("form", form.Key).Str("type", fmt.Sprintf("%T", summary)).Msg("unsupported summary")
	}
}

// Questions loads the questions of form, for callers that open a session.
func (c *Compiler) Questions(ctx context.Context, form forms.Form) ([]questionnaire.Question, error) {
	return c.loader.Load(ctx, form)
}

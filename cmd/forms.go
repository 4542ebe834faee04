package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/geriassess/internal/answers"
	"github.com/dotcommander/geriassess/internal/discovery"
	"github.com/dotcommander/geriassess/internal/forms"
	"github.com/dotcommander/geriassess/internal/output"
	"github.com/dotcommander/geriassess/internal/scoring"
	"github.com/dotcommander/geriassess/internal/types"
)

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "List the questionnaires of the registry",
	Long: `The forms command lists every questionnaire in editorial order, grouped by
category, with its kind, whether its specification sheet was found and how
many questions have a saved answer.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runForms(cmd.Context(), cmd.OutOrStdout()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(formsCmd)
}

func runForms(ctx context.Context, out io.Writer) error {
	a, err := loadApp(out)
	if err != nil {
		return err
	}
	return a.forms(ctx)
}

func (a *app) forms(ctx context.Context) error {
	rows, err := a.formStatus(ctx)
	if err != nil {
		return err
	}

	if a.cfg.Format == types.FormatJSON {
		return writeJSON(a.out, rows)
	}
	f := output.NewCompactFormatter(a.cfg.Quiet, a.cfg.Verbose)
	f.SetOutput(a.out)
	return f.FormatForms(rows)
}

func (a *app) formStatus(ctx context.Context) ([]output.FormStatus, error) {
	files, err := discovery.NewFileDiscovery(a.cfg.SpecPath(), false).DiscoverSpecs()
	if err != nil {
		return nil, fmt.Errorf("error discovering specifications: %w", err)
	}
	match := discovery.MatchForms(a.registry, files)

	var rows []output.FormStatus
	for _, form := range a.registry.Sorted() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, present := match.Present[form.Key]
		row := output.FormStatus{
			Key:         form.Key,
			Label:       form.Label,
			Category:    form.Category,
			Kind:        form.Kind,
			Spec:        form.Spec,
			SpecPresent: present,
		}
		if present {
			row.Spec = file.RelPath
		}

		saved, err := a.saved(ctx, form)
		if err != nil {
			a.logger.Warn().Err(err).Str("form", form.Key).Msg("saved answers unreadable")
		}
		row.Answered = len(saved)

		if present && len(saved) > 0 {
			if questions, err := a.loader.Load(ctx, form); err == nil {
				row.Locked = scoring.Locked(questions, saved)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// saved reads the answers of form without migrating anything: the canonical
// record first, then the legacy keys.
func (a *app) saved(ctx context.Context, form forms.Form) (answers.Answers, error) {
	for _, key := range append([]string{form.Storage()}, form.LegacyKeys...) {
		saved, err := a.store.Load(ctx, key)
		if errors.Is(err, answers.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if len(saved) > 0 {
			return saved, nil
		}
	}
	return nil, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}
	return nil
}

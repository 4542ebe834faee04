package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/geriassess/internal/forms"
)

var clearAll bool

var clearCmd = &cobra.Command{
	Use:   "clear [form...]",
	Short: "Validate and clear saved answers",
	Long: `The clear command deletes the saved answers of the given questionnaires,
including records left under their legacy keys. Use --all to clear every
questionnaire of the registry.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runClear(cmd.Context(), cmd.OutOrStdout(), args, clearAll); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	clearCmd.Flags().BoolVar(&clearAll, "all", false, "Clear every questionnaire")
	rootCmd.AddCommand(clearCmd)
}

func runClear(ctx context.Context, out io.Writer, names []string, all bool) error {
	a, err := loadApp(out)
	if err != nil {
		return err
	}
	return a.clear(ctx, names, all)
}

func (a *app) clear(ctx context.Context, names []string, all bool) error {
	var targets []forms.Form
	switch {
	case all && len(names) > 0:
		return errors.New("--all takes no form")
	case all:
		targets = a.registry.Sorted()
	case len(names) == 0:
		return errors.New("no form given (use --all to clear every questionnaire)")
	default:
		for _, name := range names {
			form, err := a.form(name)
			if err != nil {
				return err
			}
			targets = append(targets, form)
		}
	}

	for _, form := range targets {
		for _, key := range append([]string{form.Storage()}, form.LegacyKeys...) {
			if err := a.store.Delete(ctx, key); err != nil {
				return fmt.Errorf("error clearing %s: %w", form.Key, err)
			}
		}
		a.logger.Info().Str("form", form.Key).Msg("answers cleared")
		if !a.cfg.Quiet && !all {
			fmt.Fprintf(a.out, "✓ %s cleared\n", form.Label)
		}
	}
	if !a.cfg.Quiet && all {
		fmt.Fprintf(a.out, "✓ %d questionnaires cleared\n", len(targets))
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <form>",
	Short: "Score a single questionnaire",
	Long: `The evaluate command scores one questionnaire from its saved answers and
prints its summary: the listing of a free-list form, the ADL/IADL axes of the
dependency form, or the score, severity and report of any other form.

Use --verbose to see what each question contributed.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runEvaluate(cmd.Context(), cmd.OutOrStdout(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(ctx context.Context, out io.Writer, name string) error {
	a, err := loadApp(out)
	if err != nil {
		return err
	}
	return a.evaluate(ctx, name)
}

func (a *app) evaluate(ctx context.Context, name string) error {
	form, err := a.form(name)
	if err != nil {
		return err
	}
	s, err := a.open(ctx, form)
	if err != nil {
		return err
	}
	summary, err := s.Evaluate(a.options())
	if err != nil {
		return err
	}
	if err := a.outputter().FormatSummary(form, summary, a.cfg.Format); err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	return nil
}

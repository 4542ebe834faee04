package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compile every answered questionnaire into one report",
	Long: `The report command evaluates every questionnaire with saved answers, in
editorial order, and renders the compiled document.

Questionnaires without answers, or with a score of 0 and nothing to report,
are left out. A questionnaire whose answers or specification cannot be read
is left out with a warning; the others are still reported.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runReport(cmd.Context(), cmd.OutOrStdout()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(ctx context.Context, out io.Writer) error {
	a, err := loadApp(out)
	if err != nil {
		return err
	}
	return a.report(ctx)
}

func (a *app) report(ctx context.Context) error {
	payload, err := a.compiler().Compile(ctx, nil)
	if err != nil {
		return fmt.Errorf("error compiling report: %w", err)
	}
	if err := a.outputter().Format(payload, a.cfg.Format); err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	return nil
}

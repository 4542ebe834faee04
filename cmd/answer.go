package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var unsetAnswer bool

var answerCmd = &cobra.Command{
	Use:   "answer <form> <question-id> [value...]",
	Short: "Record the answer to a question",
	Long: `The answer command records the answer to one question and saves the
questionnaire immediately.

Values must be options of the question (case and accents are ignored), except
for text questions. Multi-choice questions take several values. Use --unset to
remove an answer. Question ids are listed by the show command.`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAnswer(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], args[2:], unsetAnswer); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	answerCmd.Flags().BoolVar(&unsetAnswer, "unset", false, "Remove the answer")
	rootCmd.AddCommand(answerCmd)
}

func runAnswer(ctx context.Context, out io.Writer, name, id string, values []string, unset bool) error {
	a, err := loadApp(out)
	if err != nil {
		return err
	}
	return a.answer(ctx, name, id, values, unset)
}

func (a *app) answer(ctx context.Context, name, id string, values []string, unset bool) error {
	switch {
	case unset && len(values) > 0:
		return errors.New("--unset takes no value")
	case !unset && len(values) == 0:
		return errors.New("no value given (use --unset to remove the answer)")
	}

	form, err := a.form(name)
	if err != nil {
		return err
	}
	s, err := a.open(ctx, form)
	if err != nil {
		return err
	}

	wasLocked := s.Locked()
	if err := s.Set(ctx, id, values...); err != nil {
		return err
	}
	a.logger.Info().Str("form", form.Key).Str("question", id).Strs("values", values).Msg("answer saved")

	if a.cfg.Quiet {
		return nil
	}
	if unset {
		fmt.Fprintf(a.out, "✓ %s cleared\n", id)
	} else {
		fmt.Fprintf(a.out, "✓ %s = %s\n", id, strings.Join(s.Answers().Values(id), ", "))
	}
	switch locked := s.Locked(); {
	case locked && !wasLocked:
		fmt.Fprintf(a.out, "%s is now locked: only the lock question is evaluated\n", form.Label)
	case !locked && wasLocked:
		fmt.Fprintf(a.out, "%s is unlocked\n", form.Label)
	}
	return nil
}

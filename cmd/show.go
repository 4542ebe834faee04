package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dotcommander/geriassess/internal/questionnaire"
	"github.com/dotcommander/geriassess/internal/scoring"
	"github.com/dotcommander/geriassess/internal/session"
	"github.com/dotcommander/geriassess/internal/types"
)

var showCmd = &cobra.Command{
	Use:   "show <form>",
	Short: "Show the questions and answers of a questionnaire",
	Long: `The show command prints the questions of a questionnaire in position
order with their ids, the options offered and the current answers.

Unanswered Yes/No questions read as "No" for scoring; they are marked as
implied. When the questionnaire is locked, the frozen questions are marked.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runShow(cmd.Context(), cmd.OutOrStdout(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

// shownQuestion is the JSON shape of one question of the show command.
type shownQuestion struct {
	questionnaire.Question
	Answer    []string `json:"answer,omitempty"`
	Effective []string `json:"effective,omitempty"`
	Frozen    bool     `json:"frozen,omitempty"`
}

func runShow(ctx context.Context, out io.Writer, name string) error {
	a, err := loadApp(out)
	if err != nil {
		return err
	}
	return a.show(ctx, name)
}

func (a *app) show(ctx context.Context, name string) error {
	form, err := a.form(name)
	if err != nil {
		return err
	}
	s, err := a.open(ctx, form)
	if err != nil {
		return err
	}

	shown := shownQuestions(s)
	if a.cfg.Format == types.FormatJSON {
		return writeJSON(a.out, struct {
			Form      string          `json:"form"`
			Label     string          `json:"label"`
			Kind      types.Kind      `json:"kind"`
			Locked    bool            `json:"locked"`
			Questions []shownQuestion `json:"questions"`
		}{form.Key, form.Label, form.Kind, s.Locked(), shown})
	}
	if a.cfg.Quiet {
		return nil
	}

	bold := lipgloss.NewStyle().Bold(true)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	heading := fmt.Sprintf("%s (%s)", form.Label, form.Kind)
	if s.Locked() {
		heading += " " + yellow.Render("locked")
	}
	fmt.Fprintln(a.out, bold.Render(heading))

	for _, q := range shown {
		if !q.HasAnswer() {
			fmt.Fprintf(a.out, "\n%s\n", bold.Render(q.Label))
			continue
		}

		marker := " "
		if q.Frozen {
			marker = yellow.Render("*")
		}
		fmt.Fprintf(a.out, "%s %s\n", marker, q.Label)
		fmt.Fprintf(a.out, "    %s\n", dim.Render(q.ID))
		if choices := optionLabels(q.Question); choices != "" {
			fmt.Fprintf(a.out, "    %s\n", dim.Render(choices))
		}

		switch {
		case len(q.Answer) > 0:
			fmt.Fprintf(a.out, "    → %s\n", strings.Join(q.Answer, ", "))
		case len(q.Effective) > 0:
			fmt.Fprintf(a.out, "    → %s\n", dim.Render(strings.Join(q.Effective, ", ")+" (implied)"))
		}
		if a.cfg.Verbose && q.Tooltip != "" {
			fmt.Fprintf(a.out, "    %s\n", dim.Render(q.Tooltip))
		}
	}

	if s.Locked() {
		fmt.Fprintf(a.out, "\n%s\n", dim.Render("* frozen while the questionnaire is locked"))
	}
	return nil
}

func shownQuestions(s *session.Session) []shownQuestion {
	saved := s.Answers()
	locked := s.Locked()

	applicable := make(map[string]bool)
	for _, q := range scoring.Applicable(s.Questions, locked) {
		applicable[q.ID] = true
	}

	shown := make([]shownQuestion, 0, len(s.Questions))
	for _, q := range s.Questions {
		sq := shownQuestion{Question: q, Answer: saved.Values(q.ID)}
		if len(sq.Answer) == 0 && q.HasAnswer() {
			sq.Effective = scoring.EffectiveAnswer(q, saved)
		}
		sq.Frozen = q.HasAnswer() && !applicable[q.ID]
		shown = append(shown, sq)
	}
	return shown
}

func optionLabels(q questionnaire.Question) string {
	switch q.Type {
	case questionnaire.TypeText, questionnaire.TypeTextarea:
		return "[free text]"
	}
	labels := make([]string, len(q.Options))
	for i, o := range q.Options {
		labels[i] = o.Label
	}
	if len(labels) == 0 {
		return ""
	}
	if q.Type == questionnaire.TypeMultiChoice {
		return "[" + strings.Join(labels, " | ") + "] (several)"
	}
	return "[" + strings.Join(labels, " | ") + "]"
}

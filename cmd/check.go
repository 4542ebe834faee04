package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dotcommander/geriassess/internal/baseline"
	"github.com/dotcommander/geriassess/internal/cue"
	"github.com/dotcommander/geriassess/internal/discovery"
	"github.com/dotcommander/geriassess/internal/forms"
	"github.com/dotcommander/geriassess/internal/git"
	"github.com/dotcommander/geriassess/internal/output"
	"github.com/dotcommander/geriassess/internal/questionnaire"
	"github.com/dotcommander/geriassess/internal/types"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the forms registry and every specification sheet",
	Long: `The check command validates the forms registry against its schema, parses
the specification sheet of every questionnaire and reports the defaults the
parser had to apply (unknown types or roles, missing positions, options
without points). Sheets that no questionnaire refers to are listed too.

Warnings that were reviewed can be accepted with --baseline-create; later
runs with --baseline only report new ones.

--staged and --diff limit the check to the sheets changed in git, for use in
a pre-commit hook. A changed registry or configuration file checks every
sheet.

The command fails when the registry is invalid or a sheet yields no question.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCheck(cmd.Context(), cmd.OutOrStdout(), checkFlags); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

// checkOptions selects what the check command looks at and how it treats
// accepted diagnostics.
type checkOptions struct {
	useBaseline    bool
	createBaseline bool
	baselinePath   string
	staged         bool
	diff           bool
}

var checkFlags checkOptions

func init() {
	checkCmd.Flags().BoolVar(&checkFlags.useBaseline, "baseline", false, "Ignore the diagnostics recorded in the baseline file")
	checkCmd.Flags().BoolVar(&checkFlags.createBaseline, "baseline-create", false, "Record the current diagnostics as the baseline")
	checkCmd.Flags().StringVar(&checkFlags.baselinePath, "baseline-path", baseline.DefaultFile, "Baseline file, relative to the workspace root")
	checkCmd.Flags().BoolVar(&checkFlags.staged, "staged", false, "Only check sheets staged in git")
	checkCmd.Flags().BoolVar(&checkFlags.diff, "diff", false, "Only check sheets with uncommitted changes")
	checkCmd.MarkFlagsMutuallyExclusive("staged", "diff")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(ctx context.Context, out io.Writer, opts checkOptions) error {
	a, err := loadApp(out)
	if err != nil {
		return err
	}
	return a.check(ctx, opts)
}

// checkReport is the JSON shape of the check command.
type checkReport struct {
	Registry []cue.ValidationError `json:"registry,omitempty"`
	Forms    []output.CheckResult  `json:"forms"`
	Orphans  []string              `json:"orphans,omitempty"`
	Ignored  int                   `json:"baseline_ignored,omitempty"`
}

func (a *app) check(ctx context.Context, opts checkOptions) error {
	var report checkReport

	baselineFile := opts.baselinePath
	if baselineFile == "" {
		baselineFile = baseline.DefaultFile
	}
	if !filepath.IsAbs(baselineFile) {
		baselineFile = filepath.Join(a.cfg.Root, baselineFile)
	}

	var known *baseline.Baseline
	if opts.useBaseline && !opts.createBaseline {
		if _, err := os.Stat(baselineFile); err == nil {
			known, err = baseline.LoadBaseline(baselineFile)
			if err != nil {
				a.logger.Warn().Err(err).Str("path", baselineFile).Msg("baseline ignored")
			}
		}
	}

	if path := a.cfg.FormsPath(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("error reading forms registry: %w", err)
		}
		report.Registry = forms.Validate(data, path)
	}

	files, err := discovery.NewFileDiscovery(a.cfg.SpecPath(), false).DiscoverSpecs()
	if err != nil {
		return fmt.Errorf("error discovering specifications: %w", err)
	}
	match := discovery.MatchForms(a.registry, files)
	for _, f := range match.Orphans {
		report.Orphans = append(report.Orphans, f.RelPath)
	}

	targets, err := a.checkTargets(opts, match)
	if err != nil {
		return err
	}
	if targets != nil && len(targets) == 0 {
		if !a.cfg.Quiet && a.cfg.Format != types.FormatJSON {
			fmt.Fprintln(a.out, "No changed specification sheet to check.")
		}
		return nil
	}

	failed := 0
	var issues []baseline.Issue
	for _, form := range a.registry.Sorted() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if targets != nil && !targets[form.Key] {
			continue
		}
		result := a.checkForm(ctx, form)
		if result.Failed() {
			failed++
		}
		for _, d := range result.Diagnostics {
			issues = append(issues, baseline.Issue{Spec: result.Spec, Diagnostic: d})
		}
		var dropped int
		result.Diagnostics, dropped = known.Filter(result.Spec, result.Diagnostics)
		report.Ignored += dropped
		report.Forms = append(report.Forms, result)
	}

	if opts.createBaseline {
		b := baseline.CreateBaseline(issues)
		if err := b.SaveBaseline(baselineFile); err != nil {
			return fmt.Errorf("failed to save baseline: %w", err)
		}
		a.logger.Info().Str("path", baselineFile).Int("diagnostics", len(b.Fingerprints)).Msg("baseline created")
		if !a.cfg.Quiet && a.cfg.Format != types.FormatJSON {
			fmt.Fprintf(a.out, "Baseline created: %s (%d diagnostics)\n", baselineFile, len(b.Fingerprints))
		}
	}

	if a.cfg.Format == types.FormatJSON {
		if err := writeJSON(a.out, report); err != nil {
			return err
		}
	} else {
		f := output.NewCompactFormatter(a.cfg.Quiet, a.cfg.Verbose)
		f.SetOutput(a.out)
		if err := f.FormatCheck(report.Registry, report.Forms, report.Orphans); err != nil {
			return err
		}
		if report.Ignored > 0 && !a.cfg.Quiet {
			fmt.Fprintf(a.out, "%d baseline %s ignored\n", report.Ignored, output.Pluralize("diagnostic", report.Ignored))
		}
	}

	for _, e := range report.Registry {
		if e.Severity == "error" {
			return errors.New("forms registry is invalid")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d specifications are unusable", failed, len(report.Forms))
	}
	return nil
}

// checkTargets returns the keys of the forms whose sheet changed in git, or
// nil to check every form.
func (a *app) checkTargets(opts checkOptions, match discovery.Match) (map[string]bool, error) {
	if !opts.staged && !opts.diff {
		return nil, nil
	}

	var (
		changed []string
		err     error
	)
	if opts.staged {
		changed, err = git.GetStagedFiles(a.cfg.Root)
	} else {
		changed, err = git.GetChangedFiles(a.cfg.Root)
	}
	if err != nil {
		return nil, fmt.Errorf("error listing changed files: %w", err)
	}
	if git.RegistryChanged(changed) {
		return nil, nil
	}

	touched := make(map[string]bool, len(changed))
	for _, p := range changed {
		touched[absPath(p)] = true
	}
	targets := make(map[string]bool)
	for key, file := range match.Present {
		if touched[absPath(file.Path)] {
			targets[key] = true
		}
	}
	a.logger.Debug().Int("changed", len(changed)).Int("forms", len(targets)).Msg("check limited to changed sheets")
	return targets, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func (a *app) checkForm(ctx context.Context, form forms.Form) output.CheckResult {
	result := output.CheckResult{Form: form.Key, Spec: form.Spec}

	rows, err := a.loader.Rows(ctx, form)
	if err != nil {
		result.Err = err.Error()
		return result
	}
	result.Questions = len(questionnaire.Parse(rows, form.Target()))
	result.Diagnostics = questionnaire.Diagnose(rows, form.Target())
	return result
}

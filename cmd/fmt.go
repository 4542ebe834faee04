package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dotcommander/geriassess/internal/discovery"
	"github.com/dotcommander/geriassess/internal/format"
)

// fmtOptions selects what the fmt command does with a sheet that changes.
type fmtOptions struct {
	check bool
	write bool
	diff  bool
}

var fmtFlags fmtOptions

var fmtCmd = &cobra.Command{
	Use:   "fmt [sheet|dir...]",
	Short: "Format specification sheets canonically",
	Long: `Format specification sheets with canonical style.

FORMATTING RULES:
  - ';' delimiter, cells quoted only when needed
  - Canonical column names (Group, Section, Position, Question, Type,
    Options, Role, TriggerOn, TriggerReportOn, Surveillance, Actions, Tooltip)
  - Cells trimmed, '|' separated values trimmed, empty values dropped
  - Blank rows dropped, no byte order mark, LF line endings

Without arguments every sheet of the specification directory is formatted.
The formatted content is printed unless --write, --diff or --check is given.

EXAMPLES:
  geriassess fmt specs/medical/falls.csv
  geriassess fmt -w
  geriassess fmt --check          # fail when a sheet needs formatting`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runFmt(cmd.Context(), cmd.OutOrStdout(), args, fmtFlags); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	fmtCmd.Flags().BoolVar(&fmtFlags.check, "check", false, "Fail if sheets would change (for CI)")
	fmtCmd.Flags().BoolVarP(&fmtFlags.write, "write", "w", false, "Write changes in place")
	fmtCmd.Flags().BoolVar(&fmtFlags.diff, "diff", false, "Show diff of what would change")
	fmtCmd.MarkFlagsMutuallyExclusive("check", "write", "diff")
	rootCmd.AddCommand(fmtCmd)
}

func runFmt(ctx context.Context, out io.Writer, args []string, opts fmtOptions) error {
	a, err := loadApp(out)
	if err != nil {
		return err
	}
	return a.formatSheets(ctx, args, opts)
}

func (a *app) formatSheets(ctx context.Context, args []string, opts fmtOptions) error {
	sheets, err := a.sheetsToFormat(args)
	if err != nil {
		return err
	}
	if len(sheets) == 0 {
		return errors.New("no sheet to format")
	}

	formatter := format.NewSheetFormatter()
	var needsFormatting []string
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return err
		}

		absPath, err := discovery.ValidateFilePath(sheet)
		if err != nil {
			a.logger.Warn().Err(err).Str("sheet", sheet).Msg("sheet skipped")
			continue
		}
		content, err := os.ReadFile(absPath)
		if err != nil {
			return fmt.Errorf("error reading %s: %w", sheet, err)
		}
		formatted, err := formatter.Format(string(content))
		if err != nil {
			return fmt.Errorf("error formatting %s: %w", sheet, err)
		}

		if string(content) == formatted {
			if a.cfg.Verbose {
				fmt.Fprintf(a.out, "%s already formatted\n", sheet)
			}
			continue
		}
		needsFormatting = append(needsFormatting, sheet)

		switch {
		case opts.check:
			if !a.cfg.Quiet {
				fmt.Fprintf(a.out, "%s needs formatting\n", sheet)
			}
		case opts.diff:
			fmt.Fprint(a.out, format.Diff(string(content), formatted, sheet))
		case opts.write:
			if err := os.WriteFile(absPath, []byte(formatted), 0644); err != nil {
				return fmt.Errorf("error writing %s: %w", absPath, err)
			}
			a.logger.Info().Str("sheet", absPath).Msg("sheet formatted")
			if !a.cfg.Quiet {
				fmt.Fprintf(a.out, "Formatted %s\n", sheet)
			}
		default:
			fmt.Fprint(a.out, formatted)
		}
	}

	if !a.cfg.Quiet && len(sheets) > 1 && (opts.check || opts.write) {
		switch {
		case len(needsFormatting) == 0:
			fmt.Fprintf(a.out, "\nAll %d sheets already formatted\n", len(sheets))
		case opts.write:
			fmt.Fprintf(a.out, "\nFormatted %d of %d sheets\n", len(needsFormatting), len(sheets))
		default:
			fmt.Fprintf(a.out, "\n%d of %d sheets need formatting\n", len(needsFormatting), len(sheets))
		}
	}

	if opts.check && len(needsFormatting) > 0 {
		return fmt.Errorf("%d of %d sheets need formatting", len(needsFormatting), len(sheets))
	}
	return nil
}

// sheetsToFormat expands args into sheet paths. Directories are searched for
// sheets; no argument means the specification directory.
func (a *app) sheetsToFormat(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{a.cfg.SpecPath()}
	}

	var sheets []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			sheets = append(sheets, arg)
			continue
		}
		files, err := discovery.NewFileDiscovery(arg, false).DiscoverSpecs()
		if err != nil {
			return nil, fmt.Errorf("error discovering specifications in %s: %w", arg, err)
		}
		for _, f := range files {
			sheets = append(sheets, filepath.Join(arg, filepath.FromSlash(f.RelPath)))
		}
	}
	return sheets, nil
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dotcommander/geriassess/internal/answers"
	"github.com/dotcommander/geriassess/internal/compiler"
	"github.com/dotcommander/geriassess/internal/config"
	"github.com/dotcommander/geriassess/internal/forms"
	"github.com/dotcommander/geriassess/internal/outputters"
	"github.com/dotcommander/geriassess/internal/project"
	"github.com/dotcommander/geriassess/internal/scoring"
	"github.com/dotcommander/geriassess/internal/session"
)

var (
	rootPath     string
	quiet        bool
	verbose      bool
	outputFormat string
	outputFile   string
	stateDir     string
	logLevel     string
)

// exitFunc is swapped in tests.
var exitFunc = os.Exit

var rootCmd = &cobra.Command{
	Use:   "geriassess",
	Short: "Geriatric assessment - questionnaire scoring and report compilation",
	Long: `Geriassess answers geriatric assessment questionnaires described by CSV
specification sheets, scores each questionnaire and compiles every answered
questionnaire into one report with scores, severity colors and a two-column
surveillance/actions table.

Without a subcommand the compiled report is printed.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runReport(cmd.Context(), cmd.OutOrStdout()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

// Execute runs the root command. SIGINT cancels the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		exitFunc(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&rootPath, "root", "r", "", "Workspace root directory (auto-detected if not specified)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "console", "Output format (console|json|markdown)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Write json or markdown output to this file")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", ".geriassess", "Directory holding saved answers")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")

	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("stateDir", rootCmd.PersistentFlags().Lookup("state-dir"))
	_ = viper.BindPFlag("logLevel", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig resolves the workspace root before any command loads its
// configuration.
func initConfig() {
	if rootPath != "" {
		return
	}
	root, err := project.FindProjectRoot(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error detecting workspace root: %v\n", err)
		exitFunc(1)
		return
	}
	rootPath = root
}

// app bundles what every command needs.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	registry *forms.Registry
	loader   *forms.FSLoader
	store    answers.Store
	out      io.Writer
}

// loadApp builds the app from the configuration of the workspace.
func loadApp(out io.Writer) (*app, error) {
	cfg, err := config.LoadConfig(rootPath)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	return newApp(cfg, newLogger(cfg, os.Stderr), out)
}

// newLogger writes JSON events to w, or human-readable lines in verbose
// mode.
func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	logger := zerolog.New(w).With().Timestamp().Logger()
	if cfg.Verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	}
	return logger.Level(cfg.Level())
}

func newApp(cfg *config.Config, logger zerolog.Logger, out io.Writer) (*app, error) {
	registry, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("root", cfg.Root).
		Str("specs", cfg.SpecPath()).
		Str("state", cfg.StatePath()).
		Int("forms", len(registry.Forms)).
		Msg("workspace loaded")

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		loader:   forms.NewFSLoader(os.DirFS(cfg.SpecPath())),
		store:    answers.NewFileStore(cfg.StatePath()),
		out:      out,
	}, nil
}

func loadRegistry(cfg *config.Config) (*forms.Registry, error) {
	var (
		registry *forms.Registry
		err      error
	)
	if path := cfg.FormsPath(); path != "" {
		registry, err = forms.LoadFile(path)
	} else {
		registry, err = forms.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("error loading forms registry: %w", err)
	}
	if len(cfg.Order) > 0 {
		registry = registry.WithOrder(cfg.Order)
	}
	return registry, nil
}

func (a *app) options() scoring.Options {
	return scoring.Options{QualityPhrase: a.cfg.QualityPhrase}
}

func (a *app) outputter() *outputters.Outputter {
	return outputters.NewOutputterTo(a.cfg, a.out)
}

func (a *app) compiler() *compiler.Compiler {
	return compiler.New(a.registry, a.loader, a.store, a.options(), a.logger)
}

// form resolves a form key or label.
func (a *app) form(name string) (forms.Form, error) {
	return a.registry.MustLookup(name)
}

// open activates a form: its specification is loaded and its saved answers
// are restored.
func (a *app) open(ctx context.Context, form forms.Form) (*session.Session, error) {
	questions, err := a.compiler().Questions(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", form.Key, err)
	}
	if len(questions) == 0 {
		a.logger.Warn().Str("form", form.Key).Str("spec", form.Spec).Msg("specification has no question for this form")
	}
	return session.Open(ctx, a.store, form, questions)
}

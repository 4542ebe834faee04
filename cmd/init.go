package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dotcommander/geriassess/internal/config"
	"github.com/dotcommander/geriassess/internal/project"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file in the workspace root",
	Long: `The init command writes .geriassessrc.json with the default settings in
the workspace root. An existing configuration file is kept unless --force is
given.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runInit(cmd.OutOrStdout(), rootPath, initForce); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
	rootCmd.AddCommand(initCmd)
}

func runInit(out io.Writer, root string, force bool) error {
	if root == "" {
		root = "."
	}
	info, err := project.Detect(root)
	if err != nil {
		return err
	}
	if info.ConfigFile != "" && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", filepath.Join(root, info.ConfigFile))
	}

	path := filepath.Join(root, config.ConfigFiles[0])
	cfg := &config.Config{
		SpecDir:  "specs",
		StateDir: ".geriassess",
		Format:   "console",
		LogLevel: "warn",
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ wrote %s\n", path)
	if !info.HasSpecs {
		fmt.Fprintf(out, "  no %s/ directory yet: put the questionnaire sheets there\n", project.SpecsMarker)
	}
	return nil
}

// Package git lists the workspace files touched by uncommitted changes, so
// the check command can limit itself to the sheets being edited.
package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// GetStagedFiles returns absolute paths of the staged specification sheets
// and registry files. Returns an empty slice outside a git repository.
func GetStagedFiles(rootPath string) ([]string, error) {
	if !IsGitRepo(rootPath) {
		return []string{}, nil
	}

	output, err := run(rootPath, "diff", "--name-only", "--relative", "--staged")
	if err != nil {
		return nil, err
	}
	return filterRelevantFiles(output, rootPath)
}

// GetChangedFiles returns absolute paths of every uncommitted change, staged
// or not. Returns an empty slice outside a git repository.
func GetChangedFiles(rootPath string) ([]string, error) {
	if !IsGitRepo(rootPath) {
		return []string{}, nil
	}

	// No commits yet: every tracked file counts as changed
	if _, err := run(rootPath, "rev-parse", "HEAD"); err != nil {
		output, err := run(rootPath, "ls-files")
		if err != nil {
			return nil, err
		}
		return filterRelevantFiles(output, rootPath)
	}

	output, err := run(rootPath, "diff", "--name-only", "--relative", "HEAD")
	if err != nil {
		return nil, err
	}
	return filterRelevantFiles(output, rootPath)
}

// IsGitRepo checks if the given directory is within a git repository.
func IsGitRepo(rootPath string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = rootPath
	return cmd.Run() == nil
}

func run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, output)
	}
	return string(output), nil
}

// filterRelevantFiles keeps the existing sheets and registry files of git
// output and returns them as absolute paths. Deleted files are dropped.
func filterRelevantFiles(gitOutput, rootPath string) ([]string, error) {
	var files []string
	for _, line := range strings.Split(strings.TrimSpace(gitOutput), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !isRelevantFile(line) {
			continue
		}

		absPath := filepath.Join(rootPath, line)
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			continue
		}
		files = append(files, absPath)
	}
	return files, nil
}

// isRelevantFile matches specification sheets, the forms registry and the
// configuration files.
func isRelevantFile(relPath string) bool {
	base := filepath.Base(relPath)
	switch {
	case strings.EqualFold(filepath.Ext(base), ".csv"):
		return true
	case base == "forms.yaml", base == "forms.yml":
		return true
	case strings.HasPrefix(base, ".geriassessrc."):
		return true
	}
	return false
}

// RegistryChanged reports whether any of files is not a sheet: a registry
// or configuration change affects every questionnaire.
func RegistryChanged(files []string) bool {
	for _, f := range files {
		if !strings.EqualFold(filepath.Ext(f), ".csv") {
			return true
		}
	}
	return false
}

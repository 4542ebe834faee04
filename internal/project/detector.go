package project

import (
	"os"
	"path/filepath"
)

// Markers that identify a geriassess workspace, in lookup order.
var (
	ConfigMarkers = []string{".geriassessrc.json", ".geriassessrc.yaml", ".geriassessrc.yml"}
	FormsMarker   = "forms.yaml"
	SpecsMarker   = "specs"
)

// Info contains information about the detected workspace.
// Named 'Info' instead of 'ProjectInfo' to avoid stuttering (project.Info vs project.ProjectInfo).
type Info struct {
	Root       string
	ConfigFile string // first configuration file found, "" if none
	HasForms   bool
	HasSpecs   bool
	HasGit     bool
	FilesFound []string
}

// FindProjectRoot searches for a workspace root starting from the given path
// and climbing up the directory tree if needed. When no ancestor qualifies
// the absolute start path is returned.
func FindProjectRoot(startPath string) (string, error) {
	if startPath == "" {
		startPath = "."
	}
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", err
	}

	currentDir := absPath
	for {
		if isProjectRoot(currentDir) {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			// Reached filesystem root
			break
		}
		currentDir = parent
	}

	return absPath, nil
}

// isProjectRoot determines if a directory is a workspace root
func isProjectRoot(path string) bool {
	for _, name := range ConfigMarkers {
		if fileExists(filepath.Join(path, name)) {
			return true
		}
	}
	if fileExists(filepath.Join(path, FormsMarker)) {
		return true
	}
	return dirExists(filepath.Join(path, SpecsMarker))
}

// Detect reports which workspace markers exist at rootPath.
// Named 'Detect' instead of 'DetectProjectInfo' to avoid stuttering.
func Detect(rootPath string) (*Info, error) {
	info := &Info{Root: rootPath}

	for _, name := range ConfigMarkers {
		if fileExists(filepath.Join(rootPath, name)) {
			info.ConfigFile = name
			info.FilesFound = append(info.FilesFound, name)
			break
		}
	}
	if fileExists(filepath.Join(rootPath, FormsMarker)) {
		info.HasForms = true
		info.FilesFound = append(info.FilesFound, FormsMarker)
	}
	if dirExists(filepath.Join(rootPath, SpecsMarker)) {
		info.HasSpecs = true
		info.FilesFound = append(info.FilesFound, SpecsMarker+"/")
	}
	if _, err := os.Stat(filepath.Join(rootPath, ".git")); err == nil {
		info.HasGit = true
	}

	return info, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

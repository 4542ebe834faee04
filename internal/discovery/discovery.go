// Package discovery finds questionnaire specification sheets on disk and
// matches them against the forms registry.
package discovery

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dotcommander/geriassess/internal/forms"
)

// DefaultPatterns selects every CSV sheet below the specification root.
var DefaultPatterns = []string{"**/*.csv"}

// ValidateFilePath checks that a single specification path is usable.
// It resolves symlinks and rejects directories, empty files and binary
// content.
func ValidateFilePath(p string) (absPath string, err error) {
	absPath, err = filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", p, err)
	}

	info, err := os.Lstat(absPath) // Lstat to detect symlinks
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", absPath)
		}
		if os.IsPermission(err) {
			return "", fmt.Errorf("permission denied: %s", absPath)
		}
		return "", fmt.Errorf("cannot access file: %s: %w", absPath, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		realPath, evalErr := filepath.EvalSymlinks(absPath)
		if evalErr != nil {
			return "", fmt.Errorf("cannot resolve symlink %s: %w", absPath, evalErr)
		}
		absPath = realPath
		info, err = os.Stat(absPath)
		if err != nil {
			return "", fmt.Errorf("symlink target inaccessible: %s: %w", absPath, err)
		}
	}

	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", absPath)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("file is empty: %s", absPath)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %s: %w", absPath, err)
	}
	defer f.Close()

	// Read first 512 bytes for binary detection
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %s: %w", absPath, err)
	}
	if bytes.Contains(buf[:n], []byte{0}) {
		return "", fmt.Errorf("file appears to be binary, not text: %s", absPath)
	}

	return absPath, nil
}

// File represents a discovered specification sheet
type File struct {
	Path    string
	RelPath string // slash-separated, relative to the discovery root
	Size    int64
}

// FileDiscovery manages file discovery operations
type FileDiscovery struct {
	rootPath       string
	followSymlinks bool
}

// NewFileDiscovery creates a new FileDiscovery instance
func NewFileDiscovery(rootPath string, followSymlinks bool) *FileDiscovery {
	return &FileDiscovery{
		rootPath:       rootPath,
		followSymlinks: followSymlinks,
	}
}

// DiscoverSpecs finds the sheets matching patterns, DefaultPatterns when
// none are given. Results are unique and sorted by relative path. A missing
// root yields no files.
func (fd *FileDiscovery) DiscoverSpecs(patterns ...string) ([]File, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	if info, err := os.Stat(fd.rootPath); err != nil || !info.IsDir() {
		return nil, nil
	}

	files, err := fd.findFilesByPattern(patterns)
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// findFilesByPattern finds files matching the given glob patterns
func (fd *FileDiscovery) findFilesByPattern(patterns []string) ([]File, error) {
	var files []File
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		matches, err := doublestar.Glob(os.DirFS(fd.rootPath), pattern)
		if err != nil {
			return nil, fmt.Errorf("error evaluating pattern %s: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] {
				continue
			}
			if f, ok := fd.processMatch(match); ok {
				seen[match] = true
				files = append(files, f)
			}
		}
	}

	return files, nil
}

// processMatch converts a glob match into a File, returning false if the match should be skipped.
func (fd *FileDiscovery) processMatch(match string) (File, bool) {
	fullPath := filepath.Join(fd.rootPath, filepath.FromSlash(match))

	info, err := os.Lstat(fullPath)
	if err != nil {
		return File{}, false
	}

	if info.Mode()&os.ModeSymlink != 0 {
		resolvedInfo, ok := fd.resolveSymlink(fullPath)
		if !ok {
			return File{}, false
		}
		info = resolvedInfo
	}
	if info.IsDir() {
		return File{}, false
	}

	return File{
		Path:    fullPath,
		RelPath: match,
		Size:    info.Size(),
	}, true
}

// resolveSymlink follows a symlink if configured. Targets outside the root
// are skipped.
func (fd *FileDiscovery) resolveSymlink(fullPath string) (os.FileInfo, bool) {
	if !fd.followSymlinks {
		return nil, false
	}

	realPath, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		return nil, false
	}

	root, err := filepath.EvalSymlinks(fd.rootPath)
	if err != nil {
		root = fd.rootPath
	}
	if !strings.HasPrefix(realPath, root+string(os.PathSeparator)) {
		return nil, false
	}

	info, err := os.Stat(realPath)
	if err != nil {
		return nil, false
	}
	return info, true
}

// Match is the result of pairing registry forms with discovered sheets.
type Match struct {
	Present map[string]File // form key -> sheet
	Missing []string        // form keys without a sheet
	Orphans []File          // sheets no form refers to
}

// MatchForms pairs every form with its sheet. The declared path wins; a
// sheet with the same base name anywhere below the root is accepted
// otherwise, like the specification loader does.
func MatchForms(reg *forms.Registry, files []File) Match {
	m := Match{Present: make(map[string]File)}
	byPath := make(map[string]File, len(files))
	for _, f := range files {
		byPath[f.RelPath] = f
	}

	used := make(map[string]bool)
	for _, form := range reg.Forms {
		spec := path.Clean(filepath.ToSlash(form.Spec))
		f, ok := byPath[spec]
		if !ok {
			f, ok = findByBase(files, path.Base(spec))
		}
		if !ok {
			m.Missing = append(m.Missing, form.Key)
			continue
		}
		m.Present[form.Key] = f
		used[f.RelPath] = true
	}

	for _, f := range files {
		if !used[f.RelPath] {
			m.Orphans = append(m.Orphans, f)
		}
	}
	return m
}

func findByBase(files []File, base string) (File, bool) {
	for _, f := range files {
		if ok, _ := doublestar.Match("**/"+base, f.RelPath); ok {
			return f, true
		}
	}
	return File{}, false
}

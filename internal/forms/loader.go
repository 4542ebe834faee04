package forms

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dotcommander/geriassess/internal/questionnaire"
)

// ErrSpecNotFound is returned when a form's sheet cannot be located.
var ErrSpecNotFound = errors.New("specification not found")

// Loader fetches and parses the questions of a form.
type Loader interface {
	Load(ctx context.Context, f Form) ([]questionnaire.Question, error)
}

// FSLoader reads specification sheets from a file system. Parsed questions
// are cached per form key for the life of the loader.
type FSLoader struct {
	fsys fs.FS

	mu    sync.Mutex
	cache map[string][]questionnaire.Question
}

// NewFSLoader returns a loader reading sheets from fsys.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys, cache: make(map[string][]questionnaire.Question)}
}

// Load implements Loader.
func (l *FSLoader) Load(ctx context.Context, f Form) ([]questionnaire.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	cached, ok := l.cache[f.Key]
	l.mu.Unlock()
	if ok {
		return cached, nil
	}

	rows, err := l.Rows(ctx, f)
	if err != nil {
		return nil, err
	}
	questions := questionnaire.Parse(rows, f.Target())

	l.mu.Lock()
	l.cache[f.Key] = questions
	l.mu.Unlock()
	return questions, nil
}

// Rows reads the raw rows of a form's sheet without parsing them.
func (l *FSLoader) Rows(ctx context.Context, f Form) ([]questionnaire.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := l.Resolve(f.Spec)
	if err != nil {
		return nil, fmt.Errorf("form %s: %w", f.Key, err)
	}
	file, err := l.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("form %s: failed to open %s: %w", f.Key, name, err)
	}
	defer file.Close()

	rows, err := questionnaire.ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("form %s: %w", f.Key, err)
	}
	return rows, nil
}

// Resolve returns the path of spec inside the file system. When spec does
// not exist as given, the first file with the same base name anywhere in the
// tree is used.
func (l *FSLoader) Resolve(spec string) (string, error) {
	clean := path.Clean(spec)
	if _, err := fs.Stat(l.fsys, clean); err == nil {
		return clean, nil
	}
	matches, err := doublestar.Glob(l.fsys, "**/"+path.Base(clean))
	if err != nil {
		return "", fmt.Errorf("invalid specification path %q: %w", spec, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrSpecNotFound, spec)
	}
	return matches[0], nil
}

// Forget drops the cached questions of key.
func (l *FSLoader) Forget(key string) {
	l.mu.Lock()
	delete(l.cache, key)
	l.mu.Unlock()
}

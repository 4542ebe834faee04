package answers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Store errors.
var (
	ErrNotFound = errors.New("no answers recorded")
	ErrCorrupt  = errors.New("corrupt answer record")
)

// SchemaVersion is the version written to every record.
const SchemaVersion = 2

// Store persists one answer map per questionnaire instance key.
type Store interface {
	Load(ctx context.Context, key string) (Answers, error)
	Save(ctx context.Context, key string, a Answers) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// Record is the on-disk shape of one instance.
type Record struct {
	Version   int     `json:"version"`
	Key       string  `json:"key"`
	UpdatedAt string  `json:"updated_at"`
	Answers   Answers `json:"answers"`
}

// FileStore keeps one JSON file per key in a directory.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore creates a FileStore rooted at dir. The directory is created
// on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

// Dir returns the state directory.
func (s *FileStore) Dir() string {
	return s.dir
}

var unsafeKey = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func (s *FileStore) path(key string) string {
	name := unsafeKey.ReplaceAllString(key, "_")
	return filepath.Join(s.dir, name+".json")
}

// Load reads the answers of key. A bare JSON object, the format written by
// the first generation of the tool, is upgraded to a Record in place.
func (s *FileStore) Load(ctx context.Context, key string) (Answers, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read answers for %s: %w", key, err)
	}

	rec, legacy, err := decodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	if legacy {
		if err := s.Save(ctx, key, rec.Answers); err != nil {
			return nil, fmt.Errorf("failed to migrate answers for %s: %w", key, err)
		}
	}
	return rec.Answers.Compact(), nil
}

// decodeRecord accepts either a Record or a bare answer map.
func decodeRecord(data []byte) (Record, bool, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Record{}, false, err
	}
	if _, ok := probe["version"]; ok {
		if _, ok := probe["answers"]; ok {
			var rec Record
			if err := json.Unmarshal(data, &rec); err != nil {
				return Record{}, false, err
			}
			if rec.Answers == nil {
				rec.Answers = Answers{}
			}
			return rec, false, nil
		}
	}
	var a Answers
	if err := json.Unmarshal(data, &a); err != nil {
		return Record{}, false, err
	}
	return Record{Version: SchemaVersion, Answers: a}, true, nil
}

// Save writes the answers of key atomically.
func (s *FileStore) Save(ctx context.Context, key string, a Answers) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("error creating state directory: %w", err)
	}
	rec := Record{
		Version:   SchemaVersion,
		Key:       key,
		UpdatedAt: s.now().UTC().Format(time.RFC3339),
		Answers:   a.Compact(),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".answers-*")
	if err != nil {
		return fmt.Errorf("failed to write answers: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write answers: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write answers: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("failed to write answers: %w", err)
	}
	return nil
}

// Delete removes the record of key. Deleting a missing record is not an
// error.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete answers for %s: %w", key, err)
	}
	return nil
}

// Keys lists the keys that have a record, sorted.
func (s *FileStore) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list state directory: %w", err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	records map[string]Answers
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Answers)}
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, key string) (Answers, error) {
	a, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return a.Clone(), nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, key string, a Answers) error {
	m.records[key] = a.Compact()
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	delete(m.records, key)
	return nil
}

// Keys implements Store.
func (m *MemoryStore) Keys(_ context.Context) ([]string, error) {
	keys := make([]string, 0, len(m.records))
	for k := range m.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Migrate moves the first non-empty legacy record into key. It runs once
// when an instance is activated; a canonical record always wins and the
// legacy records are left untouched in that case.
func Migrate(ctx context.Context, s Store, key string, legacy []string) (bool, error) {
	if len(legacy) == 0 {
		return false, nil
	}
	if _, err := s.Load(ctx, key); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	for _, old := range legacy {
		a, err := s.Load(ctx, old)
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorrupt) {
			continue
		}
		if err != nil {
			return false, err
		}
		if len(a) == 0 {
			continue
		}
		if err := s.Save(ctx, key, a); err != nil {
			return false, err
		}
		if err := s.Delete(ctx, old); err != nil {
			return true, err
		}
		return true, nil
	}
	return false, nil
}

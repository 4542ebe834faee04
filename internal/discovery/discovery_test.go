package discovery

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dotcommander/geriassess/internal/forms"
	"github.com/dotcommander/geriassess/internal/types"
)

// writeFiles creates files relative to root
func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func relPaths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	return out
}

func TestDiscoverSpecs(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"medical/pain.csv":       "Question\nPain at rest\n",
		"medical/falls.csv":      "Question\nFalls\n",
		"social/isolation.csv":   "Question\nLives alone\n",
		"notes/readme.md":        "# not a sheet",
		"vulnerability/help.csv": "Question\nHome nurse\n",
	})
	if err := os.MkdirAll(filepath.Join(root, "empty.csv"), 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name: "default patterns",
			want: []string{"medical/falls.csv", "medical/pain.csv", "social/isolation.csv", "vulnerability/help.csv"},
		},
		{
			name:     "custom pattern",
			patterns: []string{"medical/*.csv"},
			want:     []string{"medical/falls.csv", "medical/pain.csv"},
		},
		{
			name:     "overlapping patterns are deduplicated",
			patterns: []string{"medical/*.csv", "**/pain.csv"},
			want:     []string{"medical/falls.csv", "medical/pain.csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := NewFileDiscovery(root, false).DiscoverSpecs(tt.patterns...)
			if err != nil {
				t.Fatalf("DiscoverSpecs() error = %v", err)
			}
			got := relPaths(files)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("DiscoverSpecs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscoverSpecs_MissingRoot(t *testing.T) {
	files, err := NewFileDiscovery(filepath.Join(t.TempDir(), "absent"), false).DiscoverSpecs()
	if err != nil {
		t.Fatalf("DiscoverSpecs() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %v", relPaths(files))
	}
}

func TestDiscoverSpecs_InvalidPattern(t *testing.T) {
	root := t.TempDir()
	if _, err := NewFileDiscovery(root, false).DiscoverSpecs("[invalid"); err == nil {
		t.Error("expected an error for a malformed pattern")
	}
}

func TestDiscoverSpecs_Symlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFiles(t, root, map[string]string{"medical/pain.csv": "Question\nPain\n"})
	writeFiles(t, outside, map[string]string{"secret.csv": "Question\nSecret\n"})

	if err := os.Symlink(filepath.Join(root, "medical", "pain.csv"), filepath.Join(root, "link.csv")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(outside, "secret.csv"), filepath.Join(root, "escape.csv")); err != nil {
		t.Fatal(err)
	}

	files, err := NewFileDiscovery(root, false).DiscoverSpecs()
	if err != nil {
		t.Fatal(err)
	}
	if got := relPaths(files); strings.Join(got, ",") != "medical/pain.csv" {
		t.Errorf("without followSymlinks got %v", got)
	}

	files, err = NewFileDiscovery(root, true).DiscoverSpecs()
	if err != nil {
		t.Fatal(err)
	}
	if got := relPaths(files); strings.Join(got, ",") != "link.csv,medical/pain.csv" {
		t.Errorf("with followSymlinks got %v", got)
	}
}

func TestValidateFilePath(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"ok.csv": "Question\nPain\n", "empty.csv": ""})
	if err := os.WriteFile(filepath.Join(dir, "binary.csv"), []byte{'Q', 0, 1, 2}, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "valid", path: filepath.Join(dir, "ok.csv")},
		{name: "missing", path: filepath.Join(dir, "nope.csv"), wantErr: "file not found"},
		{name: "directory", path: dir, wantErr: "is a directory"},
		{name: "empty", path: filepath.Join(dir, "empty.csv"), wantErr: "file is empty"},
		{name: "binary", path: filepath.Join(dir, "binary.csv"), wantErr: "binary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			abs, err := ValidateFilePath(tt.path)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateFilePath() error = %v", err)
				}
				if !filepath.IsAbs(abs) {
					t.Errorf("expected absolute path, got %s", abs)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateFilePath() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestMatchForms(t *testing.T) {
	reg := &forms.Registry{Forms: []forms.Form{
		{Key: "pain", Label: "Pain", Kind: types.KindGeneric, Spec: "medical/pain.csv"},
		{Key: "falls", Label: "Falls", Kind: types.KindGeneric, Spec: "medical/falls.csv"},
		{Key: "dep", Label: "Dependency", Kind: types.KindDependency, Spec: "vulnerability/dependency.csv"},
	}}
	files := []File{
		{RelPath: "archive/falls.csv"},
		{RelPath: "medical/pain.csv"},
		{RelPath: "social/unused.csv"},
	}

	m := MatchForms(reg, files)

	if m.Present["pain"].RelPath != "medical/pain.csv" {
		t.Errorf("pain = %+v", m.Present["pain"])
	}
	if m.Present["falls"].RelPath != "archive/falls.csv" {
		t.Errorf("falls should fall back to the base name, got %+v", m.Present["falls"])
	}
	if strings.Join(m.Missing, ",") != "dep" {
		t.Errorf("Missing = %v", m.Missing)
	}
	if got := relPaths(m.Orphans); strings.Join(got, ",") != "social/unused.csv" {
		t.Errorf("Orphans = %v", got)
	}
}

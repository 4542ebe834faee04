package baseline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dotcommander/geriassess/internal/questionnaire"
)

func warning(question, message string, row int) questionnaire.Diagnostic {
	return questionnaire.Diagnostic{Row: row, Question: question, Message: message, Severity: questionnaire.DiagWarning}
}

func TestCreateBaseline(t *testing.T) {
	issues := []Issue{
		{Spec: "medical/falls.csv", Diagnostic: warning("Falls in last 12 months", `unknown type "slider", using single-choice`, 2)},
		{Spec: "medical/pain.csv", Diagnostic: warning("Pain at rest", `unknown role "main" ignored`, 1)},
		// Duplicate issue - should be deduplicated
		{Spec: "medical/falls.csv", Diagnostic: warning("Falls in last 12 months", `unknown type "slider", using single-choice`, 2)},
	}

	b := CreateBaseline(issues)

	if b.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", b.Version)
	}
	if b.CreatedAt == "" {
		t.Error("Expected created_at to be set")
	}
	if len(b.Fingerprints) != 2 {
		t.Errorf("Expected 2 unique fingerprints, got %d", len(b.Fingerprints))
	}
	if len(b.index) != 2 {
		t.Errorf("Expected index with 2 entries, got %d", len(b.index))
	}
}

func TestIsKnown(t *testing.T) {
	known := Issue{Spec: "medical/falls.csv", Diagnostic: warning("Falls in last 12 months", `unknown type "slider", using single-choice`, 2)}

	tests := []struct {
		name  string
		issue Issue
		want  bool
	}{
		{"same issue", known, true},
		{"row moved", Issue{Spec: known.Spec, Diagnostic: warning(known.Diagnostic.Question, known.Diagnostic.Message, 7)}, true},
		{"other quoted value", Issue{Spec: known.Spec, Diagnostic: warning(known.Diagnostic.Question, `unknown type "list", using single-choice`, 2)}, true},
		{"other sheet", Issue{Spec: "medical/pain.csv", Diagnostic: known.Diagnostic}, false},
		{"other question", Issue{Spec: known.Spec, Diagnostic: warning("Fear of falling", known.Diagnostic.Message, 2)}, false},
	}

	b := CreateBaseline([]Issue{known})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.IsKnown(tt.issue); got != tt.want {
				t.Errorf("IsKnown() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNilBaseline(t *testing.T) {
	var b *Baseline
	diags := []questionnaire.Diagnostic{warning("Q", "msg", 1)}

	if b.IsKnown(Issue{Spec: "a.csv", Diagnostic: diags[0]}) {
		t.Error("nil baseline knows nothing")
	}
	kept, dropped := b.Filter("a.csv", diags)
	if len(kept) != 1 || dropped != 0 {
		t.Errorf("Filter() = %d kept, %d dropped; want 1, 0", len(kept), dropped)
	}
}

func TestFilter(t *testing.T) {
	accepted := warning("Falls in last 12 months", `unknown role "main" ignored`, 2)
	fresh := warning("Fear of falling", "row dropped: no question text, options or information type", 4)

	b := CreateBaseline([]Issue{{Spec: "medical/falls.csv", Diagnostic: accepted}})
	kept, dropped := b.Filter("medical/falls.csv", []questionnaire.Diagnostic{accepted, fresh})

	if dropped != 1 {
		t.Errorf("Expected 1 dropped diagnostic, got %d", dropped)
	}
	if len(kept) != 1 || kept[0].Question != "Fear of falling" {
		t.Errorf("Expected only the new diagnostic to remain, got %+v", kept)
	}
}

func TestSaveAndLoadBaseline(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	issue := Issue{Spec: "vulnerability/dependency.csv", Diagnostic: warning("Autonomy for washing", `unknown type "scale", using single-choice`, 1)}

	original := CreateBaseline([]Issue{issue})
	if err := original.SaveBaseline(path); err != nil {
		t.Fatalf("SaveBaseline() error = %v", err)
	}

	loaded, err := LoadBaseline(path)
	if err != nil {
		t.Fatalf("LoadBaseline() error = %v", err)
	}
	if len(loaded.Fingerprints) != len(original.Fingerprints) {
		t.Errorf("Expected %d fingerprints, got %d", len(original.Fingerprints), len(loaded.Fingerprints))
	}
	if !loaded.IsKnown(issue) {
		t.Error("Expected loaded baseline to know the saved issue")
	}
}

func TestLoadBaselineErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadBaseline(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadBaseline(bad); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestNormalizeMessage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`unknown type "slider", using single-choice`, `unknown type "*", using single-choice`},
		{"option 3 has no points", "option N has no points"},
		{"  extra   spaces ", "extra spaces"},
	}
	for _, tt := range tests {
		if got := normalizeMessage(tt.in); got != tt.want {
			t.Errorf("normalizeMessage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// Package baseline records specification warnings that were reviewed and
// accepted, so the check command only reports new ones.
package baseline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dotcommander/geriassess/internal/questionnaire"
)

// DefaultFile is the baseline file name in the workspace root.
const DefaultFile = ".geriassessbaseline.json"

// Baseline represents a snapshot of accepted diagnostics.
type Baseline struct {
	Version      string   `json:"version"`
	CreatedAt    string   `json:"created_at"`
	Fingerprints []string `json:"fingerprints"`
	index        map[string]bool
}

// Issue is one diagnostic of one specification sheet.
type Issue struct {
	Spec       string
	Diagnostic questionnaire.Diagnostic
}

// CreateBaseline creates a new baseline from a list of issues.
func CreateBaseline(issues []Issue) *Baseline {
	fingerprints := make([]string, 0, len(issues))
	index := make(map[string]bool)

	for _, issue := range issues {
		fp := fingerprint(issue)
		if !index[fp] {
			fingerprints = append(fingerprints, fp)
			index[fp] = true
		}
	}

	// Sort for deterministic output
	sort.Strings(fingerprints)

	return &Baseline{
		Version:      "1.0",
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		Fingerprints: fingerprints,
		index:        index,
	}
}

// LoadBaseline loads a baseline from a JSON file
func LoadBaseline(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline file: %w", err)
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse baseline file: %w", err)
	}

	b.index = make(map[string]bool, len(b.Fingerprints))
	for _, fp := range b.Fingerprints {
		b.index[fp] = true
	}

	return &b, nil
}

// SaveBaseline saves the baseline to a JSON file
func (b *Baseline) SaveBaseline(path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal baseline: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write baseline file: %w", err)
	}

	return nil
}

// IsKnown checks if an issue is in the baseline
func (b *Baseline) IsKnown(issue Issue) bool {
	if b == nil || b.index == nil {
		return false
	}
	return b.index[fingerprint(issue)]
}

// Filter drops the known diagnostics of spec and returns how many were
// dropped.
func (b *Baseline) Filter(spec string, diags []questionnaire.Diagnostic) ([]questionnaire.Diagnostic, int) {
	if b == nil {
		return diags, 0
	}
	var kept []questionnaire.Diagnostic
	for _, d := range diags {
		if b.IsKnown(Issue{Spec: spec, Diagnostic: d}) {
			continue
		}
		kept = append(kept, d)
	}
	return kept, len(diags) - len(kept)
}

// fingerprint hashes the sheet, the question and the message pattern. Row
// numbers are left out: editing a sheet shifts them.
func fingerprint(issue Issue) string {
	d := issue.Diagnostic
	data := fmt.Sprintf("%s|%s|%s", issue.Spec, strings.TrimSpace(d.Question), normalizeMessage(d.Message))

	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

var (
	quotedPattern = regexp.MustCompile(`"[^"]+"`)
	numberPattern = regexp.MustCompile(`\b\d+\b`)
)

// normalizeMessage replaces quoted values and numbers with placeholders.
func normalizeMessage(msg string) string {
	msg = quotedPattern.ReplaceAllString(msg, `"*"`)
	msg = numberPattern.ReplaceAllString(msg, `N`)
	return strings.Join(strings.Fields(msg), " ")
}

// Package format rewrites specification sheets canonically: ';' delimiter,
// canonical column names, trimmed cells and list values, no blank rows.
package format

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dotcommander/geriassess/internal/questionnaire"
	"github.com/dotcommander/geriassess/internal/textutil"
)

// Delimiter is the delimiter of formatted sheets.
const Delimiter = ';'

// canonicalColumns maps normalized header names to their canonical spelling.
var canonicalColumns = map[string]string{
	"group":           "Group",
	"section":         "Section",
	"position":        "Position",
	"qpos":            "Position",
	"question":        "Question",
	"type":            "Type",
	"options":         "Options",
	"role":            "Role",
	"triggeron":       "TriggerOn",
	"triggerreporton": "TriggerReportOn",
	"surveillance":    "Surveillance",
	"actions":         "Actions",
	"tooltip":         "Tooltip",
}

// listColumns hold '|' separated values.
var listColumns = map[string]bool{
	"Options":         true,
	"TriggerOn":       true,
	"TriggerReportOn": true,
	"Surveillance":    true,
	"Actions":         true,
}

// Formatter formats file content canonically.
type Formatter interface {
	// Format returns the formatted content, or the original content and an
	// error when it cannot be parsed.
	Format(content string) (string, error)
}

// SheetFormatter formats CSV specification sheets.
type SheetFormatter struct{}

// NewSheetFormatter creates a SheetFormatter.
func NewSheetFormatter() *SheetFormatter {
	return &SheetFormatter{}
}

// Format implements Formatter. Columns keep their order; unknown columns are
// kept with their header trimmed.
func (f *SheetFormatter) Format(content string) (string, error) {
	data := strings.TrimPrefix(content, "\ufeff")
	if strings.TrimSpace(data) == "" {
		return "", nil
	}

	reader := csv.NewReader(strings.NewReader(data))
	reader.Comma = questionnaire.DetectDelimiter(data)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return content, fmt.Errorf("failed to read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = canonicalHeader(name)
	}
	width := len(columns)

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return content, fmt.Errorf("failed to parse sheet: %w", err)
		}
		if blank(record) {
			continue
		}
		if len(record) > width {
			if !blank(record[width:]) {
				return content, fmt.Errorf("row %d has %d cells for %d columns", len(records)+1, len(record), width)
			}
			record = record[:width]
		}
		out := make([]string, width)
		for i, cell := range record {
			out[i] = normalizeCell(cell, listColumns[columns[i]])
		}
		records = append(records, out)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = Delimiter
	if err := w.Write(columns); err != nil {
		return content, err
	}
	if err := w.WriteAll(records); err != nil {
		return content, err
	}
	return buf.String(), nil
}

func canonicalHeader(name string) string {
	key := strings.ReplaceAll(textutil.Norm(name), " ", "")
	if canonical, ok := canonicalColumns[key]; ok {
		return canonical
	}
	return strings.TrimSpace(name)
}

// normalizeCell trims every line of a cell. List cells also get their
// '|' separated values trimmed and empty values dropped.
func normalizeCell(cell string, list bool) string {
	cell = strings.ReplaceAll(cell, "\r\n", "\n")
	if list {
		var values []string
		for _, v := range strings.Split(cell, "|") {
			if v = trimLines(v); v != "" {
				values = append(values, v)
			}
		}
		return strings.Join(values, "|")
	}
	return trimLines(cell)
}

func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Diff computes a simple line diff between original and formatted content.
// Returns empty string if contents are identical.
func Diff(original, formatted, filename string) string {
	if original == formatted {
		return ""
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- %s\n", filename)
	fmt.Fprintf(&buf, "+++ %s (formatted)\n", filename)

	origLines := strings.Split(original, "\n")
	fmtLines := strings.Split(formatted, "\n")

	for i := 0; i < max(len(origLines), len(fmtLines)); i++ {
		var origLine, fmtLine string
		if i < len(origLines) {
			origLine = origLines[i]
		}
		if i < len(fmtLines) {
			fmtLine = fmtLines[i]
		}

		if origLine != fmtLine {
			if origLine != "" {
				fmt.Fprintf(&buf, "- %s\n", origLine)
			}
			if fmtLine != "" {
				fmt.Fprintf(&buf, "+ %s\n", fmtLine)
			}
		}
	}

	return buf.String()
}

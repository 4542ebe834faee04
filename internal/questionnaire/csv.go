package questionnaire

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dotcommander/geriassess/internal/textutil"
)

// headerHints are substrings that only appear in a header line written with
// the given delimiter.
var headerHints = map[rune][]string{
	';': {";Group;Section;", ";Question;", "Group;Section;"},
	',': {",Group,Section,", ",Question,", "Group,Section,"},
}

// DetectDelimiter picks ';' or ',' for a specification sheet. Known header
// fragments win; otherwise the more frequent of the two characters is used.
func DetectDelimiter(text string) rune {
	for _, d := range []rune{';', ','} {
		for _, hint := range headerHints[d] {
			if strings.Contains(text, hint) {
				return d
			}
		}
	}
	if strings.Count(text, ";") > strings.Count(text, ",") {
		return ';'
	}
	return ','
}

// columnSetters maps normalized header names to Row fields.
var columnSetters = map[string]func(*Row, string){
	"group":           func(r *Row, v string) { r.Group = v },
	"section":         func(r *Row, v string) { r.Section = v },
	"position":        func(r *Row, v string) { r.Position = v },
	"qpos":            func(r *Row, v string) { r.Position = v },
	"question":        func(r *Row, v string) { r.Question = v },
	"type":            func(r *Row, v string) { r.Type = v },
	"options":         func(r *Row, v string) { r.Options = v },
	"role":            func(r *Row, v string) { r.Role = v },
	"triggeron":       func(r *Row, v string) { r.TriggerOn = v },
	"triggerreporton": func(r *Row, v string) { r.TriggerReportOn = v },
	"surveillance":    func(r *Row, v string) { r.Surveillance = v },
	"actions":         func(r *Row, v string) { r.Actions = v },
	"tooltip":         func(r *Row, v string) { r.Tooltip = v },
}

// ReadCSV reads a whole specification sheet. Columns are mapped by header
// name, so column order is free and unknown columns are ignored.
func ReadCSV(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read specification: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = DetectDelimiter(string(data))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read specification header: %w", err)
	}
	setters := make([]func(*Row, string), len(header))
	for i, name := range header {
		key := strings.ReplaceAll(textutil.Norm(name), " ", "")
		if key == "" {
			key = fmt.Sprintf("column_%d", i)
		}
		setters[i] = columnSetters[key]
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse specification: %w", err)
		}
		if isBlankRecord(record) {
			continue
		}
		var row Row
		for i, value := range record {
			if i < len(setters) && setters[i] != nil {
				setters[i](&row, value)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

package format

import (
	"strings"
	"testing"
)

func TestSheetFormatter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "already canonical",
			input: "Section;Position;Question;Options\n" +
				"Falls;1;Falls in last 12 months;Yes:40|No:0\n",
			expected: "Section;Position;Question;Options\n" +
				"Falls;1;Falls in last 12 months;Yes:40|No:0\n",
		},
		{
			name: "comma sheet becomes semicolon",
			input: "Section,Question,Options\n" +
				"Pain,Pain at rest,Yes:20|No:0\n",
			expected: "Section;Question;Options\n" +
				"Pain;Pain at rest;Yes:20|No:0\n",
		},
		{
			name: "canonical header names",
			input: "section;QPos;question;Trigger Report On;surveillance\n" +
				"Falls;1;Falls;Yes;Gait\n",
			expected: "Section;Position;Question;TriggerReportOn;Surveillance\n" +
				"Falls;1;Falls;Yes;Gait\n",
		},
		{
			name: "trim cells and list values",
			input: "Section;Question;Options;Actions\n" +
				"  Falls ; Fear of falling  ; Yes:10 | No:0 |  ; Physio |  Home visit \n",
			expected: "Section;Question;Options;Actions\n" +
				"Falls;Fear of falling;Yes:10|No:0;Physio|Home visit\n",
		},
		{
			name: "blank rows dropped and short rows padded",
			input: "Section;Question;Role\n" +
				"Falls;Refusal\n" +
				";;\n" +
				"\n" +
				"Falls;Falls;lock\n",
			expected: "Section;Question;Role\n" +
				"Falls;Refusal;\n" +
				"Falls;Falls;lock\n",
		},
		{
			name: "byte order mark and CRLF",
			input: "\ufeffSection;Question\r\n" +
				"Falls;Falls\r\n",
			expected: "Section;Question\n" +
				"Falls;Falls\n",
		},
		{
			name: "unknown columns kept",
			input: "Section; Comment ;Question\n" +
				"Falls;reviewed;Falls\n",
			expected: "Section;Comment;Question\n" +
				"Falls;reviewed;Falls\n",
		},
		{
			name:     "empty sheet",
			input:    "  \n",
			expected: "",
		},
	}

	formatter := NewSheetFormatter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := formatter.Format(tt.input)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if result != tt.expected {
				t.Errorf("Format() mismatch\ngot:\n%q\nwant:\n%q", result, tt.expected)
			}
		})
	}
}

func TestSheetFormatterIdempotent(t *testing.T) {
	input := "Group,Section,Position,Question,Options,Surveillance\n" +
		"Dependency,ADL,1,Autonomy for washing,Autonomous:0 | Dependent:1,\"Hygiene; support\"\n"

	formatter := NewSheetFormatter()
	first, err := formatter.Format(input)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	second, err := formatter.Format(first)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if first != second {
		t.Errorf("formatting is not idempotent\nfirst:\n%s\nsecond:\n%s", first, second)
	}
	if !strings.Contains(first, `"Hygiene; support"`) {
		t.Errorf("cell containing the delimiter must be quoted, got:\n%s", first)
	}
}

func TestSheetFormatterExtraCells(t *testing.T) {
	formatter := NewSheetFormatter()

	// trailing empty cells are dropped
	got, err := formatter.Format("Section;Question\nFalls;Falls;;\n")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if got != "Section;Question\nFalls;Falls\n" {
		t.Errorf("Format() = %q", got)
	}

	input := "Section;Question\nFalls;Falls;stray\n"
	got, err = formatter.Format(input)
	if err == nil {
		t.Fatal("expected error for cells outside the header")
	}
	if got != input {
		t.Error("original content must be returned on error")
	}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name      string
		original  string
		formatted string
		filename  string
		wantEmpty bool
		contains  []string
	}{
		{
			name:      "identical content",
			original:  "Section;Question\n",
			formatted: "Section;Question\n",
			filename:  "falls.csv",
			wantEmpty: true,
		},
		{
			name:      "changed row",
			original:  "Section,Question\nFalls,Falls\n",
			formatted: "Section;Question\nFalls;Falls\n",
			filename:  "falls.csv",
			contains: []string{
				"--- falls.csv",
				"+++ falls.csv (formatted)",
				"- Section,Question",
				"+ Section;Question",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Diff(tt.original, tt.formatted, tt.filename)
			if tt.wantEmpty {
				if result != "" {
					t.Errorf("Diff() = %q, want empty", result)
				}
				return
			}
			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("Diff() missing %q\ngot:\n%s", want, result)
				}
			}
		})
	}
}

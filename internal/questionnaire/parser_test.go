package questionnaire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantShown []Option
		wantRaw   []Option
	}{
		{
			name:      "empty",
			raw:       "",
			wantShown: nil,
			wantRaw:   nil,
		},
		{
			name:      "yes no with scores",
			raw:       "Yes:1|No:0",
			wantShown: []Option{{Label: "Yes", Score: ptr(1)}},
			wantRaw:   []Option{{Label: "Yes", Score: ptr(1)}, {Label: "No", Score: ptr(0)}},
		},
		{
			name:      "decimal comma and newline",
			raw:       "Partial help: 0,5\nDependent:1",
			wantShown: []Option{{Label: "Partial help", Score: ptr(0.5)}, {Label: "Dependent", Score: ptr(1)}},
			wantRaw:   []Option{{Label: "Partial help", Score: ptr(0.5)}, {Label: "Dependent", Score: ptr(1)}},
		},
		{
			name:      "malformed suffix keeps label",
			raw:       "Often:abc|Never",
			wantShown: []Option{{Label: "Often:abc"}, {Label: "Never"}},
			wantRaw:   []Option{{Label: "Often:abc"}, {Label: "Never"}},
		},
		{
			name:      "french negative is hidden",
			raw:       "Oui|Non",
			wantShown: []Option{{Label: "Oui"}},
			wantRaw:   []Option{{Label: "Oui"}, {Label: "Non"}},
		},
		{
			name:      "negative score",
			raw:       "Improved:-5",
			wantShown: []Option{{Label: "Improved", Score: ptr(-5)}},
			wantRaw:   []Option{{Label: "Improved", Score: ptr(-5)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shown, raw := ParseOptions(tt.raw)
			assert.Equal(t, tt.wantShown, shown)
			assert.Equal(t, tt.wantRaw, raw)
		})
	}
}

func TestIsBinary(t *testing.T) {
	assert.True(t, IsBinary([]Option{{Label: "Yes"}, {Label: "No"}}))
	assert.True(t, IsBinary([]Option{{Label: "non"}, {Label: "OUI"}}))
	assert.False(t, IsBinary([]Option{{Label: "Mild"}, {Label: "Moderate"}, {Label: "Severe"}}))
	assert.False(t, IsBinary([]Option{{Label: "Yes"}, {Label: "No"}, {Label: "Unknown"}}))
	assert.False(t, IsBinary([]Option{{Label: "Yes"}, {Label: "Maybe"}}))
}

func TestParse_FiltersBySectionOrGroup(t *testing.T) {
	rows := []Row{
		{Group: "Frailty", Section: "Isolation", Question: "Lives alone", Options: "Yes|No"},
		{Group: "Frailty", Section: "Undernutrition", Question: "Weight loss", Options: "Yes|No"},
		{Group: "Isolation", Question: "Visits per week", Type: "text"},
		{Question: "Unscoped row", Type: "text"},
	}

	got := Parse(rows, "isolation")
	require.Len(t, got, 3)
	assert.Equal(t, "Lives alone", got[0].Label)
	assert.Equal(t, "Visits per week", got[1].Label)
	assert.Equal(t, "Unscoped row", got[2].Label)

	assert.Len(t, Parse(rows, ""), 4)
}

func TestParse_SortsStableByPosition(t *testing.T) {
	rows := []Row{
		{Position: "3", Question: "Third"},
		{Position: "1", Question: "First"},
		{Position: "3", Question: "Third bis"},
		{Position: "2", Question: "Second"},
	}

	got := Parse(rows, "")
	var labels []string
	for _, q := range got {
		labels = append(labels, q.Label)
	}
	assert.Equal(t, []string{"First", "Second", "Third", "Third bis"}, labels)
	assert.Equal(t, 3, got[3].Position)
}

func TestParse_Defaults(t *testing.T) {
	rows := []Row{
		{Section: "Isolation", Position: "1", Question: "Lives alone", Type: "weird", Role: "bogus", Options: "Yes|No"},
		{Section: "Isolation", Position: "2", Question: "À revoir", Options: "Yes|No"},
		{Section: "Isolation", Position: "3", Question: "Follow up", Type: "checkbox", TriggerOn: "Always|*"},
		{Section: "Isolation", Position: "4", Type: "Information"},
	}

	got := Parse(rows, "Isolation")
	require.Len(t, got, 4)

	assert.Equal(t, TypeSingleChoice, got[0].Type)
	assert.Equal(t, RoleNone, got[0].Role)
	assert.Equal(t, []string{"Yes"}, got[0].LockTriggers)
	assert.Equal(t, []Option{{Label: "Yes"}}, got[0].Options)
	assert.Len(t, got[0].RawOptions, 2)

	assert.Equal(t, RoleLock, got[1].Role, "review sentinel forces the lock role")

	assert.Equal(t, TypeMultiChoice, got[2].Type)
	assert.Equal(t, []string{"Always", "*"}, got[2].LockTriggers)

	assert.Equal(t, TypeInformation, got[3].Type)
	assert.False(t, got[3].HasAnswer())
}

func TestParse_ExplicitRoleWinsOverSentinel(t *testing.T) {
	got := Parse([]Row{{Question: "To review", Role: "color"}}, "")
	require.Len(t, got, 1)
	assert.Equal(t, RoleColor, got[0].Role)
}

func TestParse_LabelSynthesis(t *testing.T) {
	rows := []Row{
		{Section: "IADL", Position: "1", Options: "using the telephone:1|No:0"},
	}

	got := Parse(rows, "")
	require.Len(t, got, 1)
	assert.Equal(t, "Difficulty performing using the telephone", got[0].Label)
	assert.Equal(t, "iadl.01.difficulty-performing-using-the-telephone", got[0].ID)
}

func TestParse_DropsUnusableRows(t *testing.T) {
	rows := []Row{
		{Section: "Isolation", Position: "1"},
		{Section: "Isolation", Position: "2", Tooltip: "orphan tooltip"},
		{Section: "Isolation", Position: "3", Question: "Kept"},
	}

	got := Parse(rows, "Isolation")
	require.Len(t, got, 1)
	assert.Equal(t, "Kept", got[0].Label)
}

func TestParse_StableIDs(t *testing.T) {
	rows := []Row{
		{Section: "Dépendance", Position: "1", Question: "Autonomy for washing", Options: "Autonomous:0|Partial help:0.5|Dependent:1"},
		{Section: "Dépendance", Position: "2", Question: "Quality of current care", Options: "Good|Partial|Insufficient"},
	}

	first := Parse(rows, "Dépendance")
	second := Parse(rows, "dependance")
	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, "dependance.01.autonomy-for-washing", first[0].ID)
}

func TestQuestionID(t *testing.T) {
	tests := []struct {
		name    string
		section string
		label   string
		pos     int
		want    string
	}{
		{
			name:    "section keeps its spaces",
			section: "Aide en place et fréquence",
			label:   "Aide à domicile",
			pos:     1,
			want:    "aide en place et frequence.01.aide-a-domicile",
		},
		{
			name:    "section trimmed and lower-cased",
			section: "  Dépendance ",
			label:   "Autonomie pour la toilette ?",
			pos:     12,
			want:    "dependance.12.autonomie-pour-la-toilette-",
		},
		{
			name:    "missing section",
			section: " ",
			label:   "Falls",
			pos:     3,
			want:    "unknown.03.falls",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuestionID(tt.section, tt.label, tt.pos))
		})
	}
}

func TestParse_FractionalPositionIsRounded(t *testing.T) {
	rows := []Row{
		{Position: "1", Question: "First"},
		{Position: "1,6", Question: "Inserted"},
	}

	got := Parse(rows, "Falls")
	require.Len(t, got, 2)
	assert.Equal(t, "falls.01.first", got[0].ID)
	assert.Equal(t, 2, got[1].Position)
	assert.Equal(t, "falls.02.inserted", got[1].ID)
}

func TestParse_DuplicateIDsAreSuffixed(t *testing.T) {
	rows := []Row{
		{Position: "1", Question: "Same"},
		{Position: "1", Question: "Same"},
		{Position: "1", Question: "Same"},
	}

	got := Parse(rows, "Isolation")
	require.Len(t, got, 3)
	assert.Equal(t, "isolation.01.same", got[0].ID)
	assert.Equal(t, "isolation.01.same-2", got[1].ID)
	assert.Equal(t, "isolation.01.same-3", got[2].ID)
}

func TestParse_MissingPositionUsesIndex(t *testing.T) {
	got := Parse([]Row{{Question: "A"}, {Question: "B"}}, "Section")
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Position)
	assert.Equal(t, 2, got[1].Position)
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Row
	}{
		{
			name:  "semicolon with quoted newlines",
			input: "Group;Section;Position;Question;Type;Options;Role;TriggerOn;TriggerReportOn;Surveillance;Actions;Tooltip\n" + "Frailty;Isolation;1;Lives alone;single-choice;\"Yes:1\nNo:0\";;;Yes;Social isolation;Home visit|Call;\n",
			want: []Row{{
				Group: "Frailty", Section: "Isolation", Position: "1", Question: "Lives alone",
				Type: "single-choice", Options: "Yes:1\nNo:0", TriggerReportOn: "Yes",
				Surveillance: "Social isolation", Actions: "Home visit|Call",
			}},
		},
		{
			name:  "comma with reordered and unknown columns",
			input: "\xef\xbb\xbfQuestion,Extra,QPos,Section\nFalls,ignored,2,Falls\n,,,\n",
			want:  []Row{{Question: "Falls", Position: "2", Section: "Falls"}},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCSV(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ';', DetectDelimiter("Group;Section;Position\n"))
	assert.Equal(t, ',', DetectDelimiter("Group,Section,Position\n"))
	assert.Equal(t, ';', DetectDelimiter("a;b;c,d\n"))
	assert.Equal(t, ',', DetectDelimiter("a,b,c\n"))
}

func TestDiagnose(t *testing.T) {
	rows := []Row{
		{Section: "S", Position: "1"},
		{Section: "S", Position: "x", Question: "Q", Type: "slider", Role: "boss", Options: "Often:lots"},
		{Section: "S", Position: "3", Options: "walking:1"},
		{Section: "S", Position: "4", Question: "To review"},
		{Section: "Other", Position: "5"},
		{Section: "S", Position: "5.5", Question: "Inserted"},
	}

	got := Diagnose(rows, "S")
	var messages []string
	for _, d := range got {
		messages = append(messages, d.Message)
	}
	assert.Contains(t, messages, "row dropped: no question text, options or information type")
	assert.Contains(t, messages, `unknown type "slider", using single-choice`)
	assert.Contains(t, messages, `unknown role "boss" ignored`)
	assert.Contains(t, messages, `position "x" is not a number`)
	assert.Contains(t, messages, `position "5.5" is not a whole number, rounded to 6`)
	assert.Contains(t, messages, `option "Often:lots" has no numeric score`)
	assert.Contains(t, messages, `label synthesized as "Difficulty performing walking"`)
	assert.Contains(t, messages, "role set to lock from the review label")
	for _, d := range got {
		assert.NotEqual(t, 5, d.Row, "rows of other sections are not diagnosed")
	}
}

package questionnaire

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dotcommander/geriassess/internal/textutil"
)

// Row is one raw specification row. Every field is the untouched cell text;
// an empty string means the cell was absent or blank.
type Row struct {
	Group           string
	Section         string
	Position        string
	Question        string
	Type            string
	Options         string
	Role            string
	TriggerOn       string
	TriggerReportOn string
	Surveillance    string
	Actions         string
	Tooltip         string
}

// reviewLabels are the sentinel labels that force the lock role when a sheet
// author forgot to tag the row.
var reviewLabels = []string{"to review", "a revoir"}

// synthesizedLabel is used for rows that only name their subject through
// their first option.
const synthesizedLabel = "Difficulty performing %s"

// Parse selects the rows belonging to target and normalizes them into
// questions sorted by position. An empty target keeps every row. Parse never
// fails: rows that cannot become a question are dropped.
func Parse(rows []Row, target string) []Question {
	selected := selectRows(rows, target)

	questions := make([]Question, 0, len(selected))
	seen := make(map[string]int, len(selected))
	for i, sr := range selected {
		q := normalizeRow(sr.row, i, target)
		if n := seen[q.ID]; n > 0 {
			seen[q.ID] = n + 1
			q.ID = fmt.Sprintf("%s-%d", q.ID, n+1)
		} else {
			seen[q.ID] = 1
		}
		questions = append(questions, q)
	}
	return questions
}

type sortedRow struct {
	row Row
	pos float64
}

// selectRows filters rows to the usable ones of target and stable-sorts them
// by position.
func selectRows(rows []Row, target string) []sortedRow {
	var out []sortedRow
	for _, r := range rows {
		if !isUsable(r) || !matchesTarget(r, target) {
			continue
		}
		pos, _ := parsePosition(r.Position)
		out = append(out, sortedRow{row: r, pos: pos})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].pos < out[j].pos
	})
	return out
}

func isUsable(r Row) bool {
	return strings.TrimSpace(r.Question) != "" ||
		normalizeType(r.Type) == TypeInformation ||
		strings.TrimSpace(r.Options) != ""
}

func matchesTarget(r Row, target string) bool {
	if strings.TrimSpace(target) == "" {
		return true
	}
	var fields []string
	for _, f := range []string{r.Section, r.Group} {
		if strings.TrimSpace(f) != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return true
	}
	for _, f := range fields {
		if textutil.EqualFold(f, target) {
			return true
		}
	}
	return false
}

func parsePosition(raw string) (float64, bool) {
	raw = strings.TrimSpace(strings.Replace(raw, ",", ".", 1))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// normalizeRow is the single place where defaults are filled in.
func normalizeRow(r Row, index int, target string) Question {
	pos := index + 1
	if v, ok := parsePosition(r.Position); ok {
		pos = int(math.Round(v))
	}

	label := strings.TrimSpace(r.Question)
	if label == "" {
		label = synthesizeLabel(r.Options)
	}

	shown, raw := ParseOptions(r.Options)

	lockTriggers := textutil.ParseList(r.TriggerOn)
	if len(lockTriggers) == 0 {
		lockTriggers = append([]string(nil), DefaultLockTriggers...)
	}

	section := firstNonEmpty(target, r.Section, r.Group)

	return Question{
		ID:                QuestionID(section, label, pos),
		Label:             label,
		Type:              normalizeType(r.Type),
		Position:          pos,
		Section:           strings.TrimSpace(r.Section),
		Options:           shown,
		RawOptions:        raw,
		Role:              normalizeRole(r.Role, label),
		LockTriggers:      lockTriggers,
		ReportTriggers:    textutil.ParseList(r.TriggerReportOn),
		SurveillanceItems: textutil.ParseList(r.Surveillance),
		ActionItems:       textutil.ParseList(r.Actions),
		Tooltip:           strings.TrimSpace(r.Tooltip),
	}
}

// QuestionID derives the stable identifier of a question:
// "<normalized section>.<2-digit position>.<label slug>". The section keeps
// its spaces so ids match the answers recorded by the browser forms.
func QuestionID(section, label string, pos int) string {
	prefix := textutil.Norm(section)
	if prefix == "" {
		prefix = "unknown"
	}
	return fmt.Sprintf("%s.%02d.%s", prefix, pos, textutil.Slug(label))
}

func synthesizeLabel(options string) string {
	entries := textutil.ParseList(options)
	if len(entries) == 0 {
		return ""
	}
	text := strings.TrimSpace(strings.SplitN(entries[0], ":", 2)[0])
	if text == "" {
		return ""
	}
	return fmt.Sprintf(synthesizedLabel, text)
}

func normalizeType(raw string) QuestionType {
	if t, ok := typeAliases[textutil.Norm(raw)]; ok {
		return t
	}
	return DefaultType
}

func normalizeRole(raw, label string) Role {
	switch Role(textutil.Norm(raw)) {
	case RoleLock:
		return RoleLock
	case RoleColor:
		return RoleColor
	case RoleFreq:
		return RoleFreq
	case RoleScore:
		return RoleScore
	case RoleNone:
		if isReviewLabel(label) {
			return RoleLock
		}
	}
	return RoleNone
}

func isKnownRole(raw string) bool {
	switch Role(textutil.Norm(raw)) {
	case RoleNone, RoleLock, RoleColor, RoleFreq, RoleScore:
		return true
	}
	return false
}

func isKnownType(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return true
	}
	_, ok := typeAliases[textutil.Norm(raw)]
	return ok
}

func isReviewLabel(label string) bool {
	return textutil.EqualsAny(label, reviewLabels...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

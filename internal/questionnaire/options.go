package questionnaire

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dotcommander/geriassess/internal/textutil"
)

// scoreSuffix matches "label:3", "label: 0,5" and "label:-1".
var scoreSuffix = regexp.MustCompile(`^(.+?):\s*([-+]?[0-9]+(?:[.,][0-9]+)?)\s*$`)

// noLabels are the hidden negative options. "non" comes from the French
// sheets the questionnaires were first written in.
var noLabels = []string{"no", "non"}

// yesLabels pair with noLabels to detect binary questions.
var yesLabels = []string{"yes", "oui"}

// IsNo reports whether label is the conventional negative answer.
func IsNo(label string) bool {
	return textutil.EqualsAny(label, noLabels...)
}

// IsYes reports whether label is the conventional affirmative answer.
func IsYes(label string) bool {
	return textutil.EqualsAny(label, yesLabels...)
}

// ParseOption parses one options entry. An entry without a numeric suffix,
// or with one that does not parse, keeps its full text as label and a nil
// score.
func ParseOption(entry string) Option {
	entry = strings.TrimSpace(entry)
	m := scoreSuffix.FindStringSubmatch(entry)
	if m == nil {
		return Option{Label: entry}
	}
	v, err := strconv.ParseFloat(strings.Replace(m[2], ",", ".", 1), 64)
	if err != nil {
		return Option{Label: entry}
	}
	return Option{Label: strings.TrimSpace(m[1]), Score: &v}
}

// ParseOptions splits an options cell into the displayed options and the raw
// options. The negative "No" entry is hidden from the displayed list only.
func ParseOptions(raw string) (shown, all []Option) {
	for _, entry := range textutil.ParseList(raw) {
		opt := ParseOption(entry)
		all = append(all, opt)
		if !IsNo(opt.Label) {
			shown = append(shown, opt)
		}
	}
	return shown, all
}

// IsBinary reports whether options are exactly a Yes/No pair.
func IsBinary(options []Option) bool {
	if len(options) != 2 {
		return false
	}
	a, b := options[0].Label, options[1].Label
	return (IsYes(a) && IsNo(b)) || (IsNo(a) && IsYes(b))
}

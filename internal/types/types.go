// Package types provides shared types used across the geriassess codebase.
// This package is at the bottom of the dependency graph and should not import
// any other internal packages to avoid circular dependencies.
package types

// Severity is the color classification of one questionnaire instance.
type Severity string

// Severity wire values.
const (
	SeverityGreen  Severity = "green"
	SeverityOrange Severity = "orange"
	SeverityRed    Severity = "red"
	SeverityGrey   Severity = "grey"
)

// Valid reports whether s is one of the four severity wire values.
func (s Severity) Valid() bool {
	switch s {
	case SeverityGreen, SeverityOrange, SeverityRed, SeverityGrey:
		return true
	}
	return false
}

// BarColor is the fill color of a rendered percentage bar. It is a superset
// of Severity: black is only used for the ADL/IADL axis bars.
type BarColor string

// BarBlack marks decorative bars that are not severity-classified.
const BarBlack BarColor = "black"

// BarColorOf converts a severity into a bar color, defaulting to grey.
func BarColorOf(s Severity) BarColor {
	if !s.Valid() {
		return BarColor(SeverityGrey)
	}
	return BarColor(s)
}

// Kind selects the evaluation algorithm of a questionnaire.
type Kind string

// Questionnaire kinds.
const (
	KindFreeList   Kind = "free-list"
	KindDependency Kind = "dependency"
	KindGeneric    Kind = "generic"
)

// Valid reports whether k is a known questionnaire kind.
func (k Kind) Valid() bool {
	switch k {
	case KindFreeList, KindDependency, KindGeneric:
		return true
	}
	return false
}

// Output format constants.
const (
	FormatConsole  = "console"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

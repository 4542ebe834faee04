// Package questionnaire turns questionnaire specification sheets into
// normalized Question values.
package questionnaire

import (
	"github.com/dotcommander/geriassess/internal/textutil"
)

// QuestionType is the closed set of answer widgets.
type QuestionType string

// Question types.
const (
	TypeText         QuestionType = "text"
	TypeTextarea     QuestionType = "textarea"
	TypeSingleChoice QuestionType = "single-choice"
	TypeMultiChoice  QuestionType = "multi-choice"
	TypeInformation  QuestionType = "information"
)

// DefaultType is used when a row has no type or an unrecognized one.
const DefaultType = TypeSingleChoice

// typeAliases maps normalized sheet values to question types. radio and
// checkbox are the names used by the first generation of sheets.
var typeAliases = map[string]QuestionType{
	"text":          TypeText,
	"textarea":      TypeTextarea,
	"single-choice": TypeSingleChoice,
	"single choice": TypeSingleChoice,
	"radio":         TypeSingleChoice,
	"multi-choice":  TypeMultiChoice,
	"multi choice":  TypeMultiChoice,
	"checkbox":      TypeMultiChoice,
	"information":   TypeInformation,
}

// Role marks questions whose answer has pipeline-wide meaning.
type Role string

// Question roles.
const (
	RoleNone  Role = ""
	RoleLock  Role = "lock"
	RoleColor Role = "color"
	RoleFreq  Role = "freq"
	RoleScore Role = "score"
)

// Wildcard matches any non-empty answer in trigger lists.
const Wildcard = "*"

// DefaultLockTriggers applies when a row leaves TriggerOn empty.
var DefaultLockTriggers = []string{"Yes"}

// Option is one answer choice with its optional point value.
type Option struct {
	Label string   `json:"label"`
	Score *float64 `json:"score,omitempty"`
}

// Points returns the option score, or 0 when the option carries none.
func (o Option) Points() float64 {
	if o.Score == nil {
		return 0
	}
	return *o.Score
}

// Question is one normalized row of a questionnaire specification.
type Question struct {
	ID                string       `json:"id"`
	Label             string       `json:"label"`
	Type              QuestionType `json:"type"`
	Position          int          `json:"position"`
	Section           string       `json:"section,omitempty"`
	Options           []Option     `json:"options,omitempty"`
	RawOptions        []Option     `json:"raw_options,omitempty"`
	Role              Role         `json:"role,omitempty"`
	LockTriggers      []string     `json:"lock_triggers,omitempty"`
	ReportTriggers    []string     `json:"report_triggers,omitempty"`
	SurveillanceItems []string     `json:"surveillance_items,omitempty"`
	ActionItems       []string     `json:"action_items,omitempty"`
	Tooltip           string       `json:"tooltip,omitempty"`
}

// HasAnswer reports whether the question accepts an answer at all.
func (q Question) HasAnswer() bool {
	return q.Type != TypeInformation
}

// FindOption looks up a raw option by its normalized label.
func (q Question) FindOption(label string) (Option, bool) {
	for _, o := range q.RawOptions {
		if textutil.EqualFold(o.Label, label) {
			return o, true
		}
	}
	return Option{}, false
}

// AllowsValue reports whether value may be stored for q. Free-text questions
// accept anything; choice questions accept any raw option, including the
// hidden "No".
func (q Question) AllowsValue(value string) bool {
	switch q.Type {
	case TypeText, TypeTextarea:
		return true
	case TypeInformation:
		return false
	}
	if len(q.RawOptions) == 0 {
		return true
	}
	_, ok := q.FindOption(value)
	return ok
}

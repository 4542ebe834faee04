// Package answers stores the respondent's answers per questionnaire instance.
package answers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Answer is the value recorded for one question: a scalar for text and
// single-choice questions, a list for multi-choice questions.
type Answer struct {
	values []string
	multi  bool
}

// Single returns a scalar answer.
func Single(v string) Answer {
	return Answer{values: []string{v}}
}

// Multi returns a list answer. Empty entries are dropped.
func Multi(vs ...string) Answer {
	a := Answer{multi: true}
	for _, v := range vs {
		if strings.TrimSpace(v) != "" {
			a.values = append(a.values, v)
		}
	}
	return a
}

// Values returns the non-blank values of the answer.
func (a Answer) Values() []string {
	var out []string
	for _, v := range a.values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// IsMulti reports whether the answer is a list.
func (a Answer) IsMulti() bool {
	return a.multi
}

// IsEmpty reports whether the answer holds no non-blank value.
func (a Answer) IsEmpty() bool {
	return len(a.Values()) == 0
}

// String joins the values for display.
func (a Answer) String() string {
	return strings.Join(a.Values(), ", ")
}

// MarshalJSON writes scalars as strings and lists as arrays.
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.multi {
		vs := a.values
		if vs == nil {
			vs = []string{}
		}
		return json.Marshal(vs)
	}
	if len(a.values) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(a.values[0])
}

// UnmarshalJSON accepts a string, an array of strings or null.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = Answer{}
		return nil
	case len(data) > 0 && data[0] == '[':
		var vs []string
		if err := json.Unmarshal(data, &vs); err != nil {
			return fmt.Errorf("invalid answer list: %w", err)
		}
		*a = Answer{values: vs, multi: true}
		return nil
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid answer value: %w", err)
		}
		*a = Single(s)
		return nil
	}
}

// Answers maps question ids to answers.
type Answers map[string]Answer

// Get returns the answer of id and whether one is recorded.
func (a Answers) Get(id string) (Answer, bool) {
	v, ok := a[id]
	return v, ok && !v.IsEmpty()
}

// Values returns the non-blank values recorded for id.
func (a Answers) Values(id string) []string {
	if v, ok := a[id]; ok {
		return v.Values()
	}
	return nil
}

// Set records v for id. An empty answer removes id.
func (a Answers) Set(id string, v Answer) {
	if v.IsEmpty() {
		delete(a, id)
		return
	}
	a[id] = v
}

// Delete removes the answer of id.
func (a Answers) Delete(id string) {
	delete(a, id)
}

// Clone returns a shallow copy that can be mutated independently.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Compact drops empty answers.
func (a Answers) Compact() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		if !v.IsEmpty() {
			out[k] = v
		}
	}
	return out
}

package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dotcommander/geriassess/internal/scoring"
	"github.com/dotcommander/geriassess/internal/types"
)

// payloadNamespace scopes payload fingerprints.
var payloadNamespace = uuid.MustParse("6f1c8f5e-2b7a-5d43-9a61-3e0d9b2c4a17")

// Payload is the compiled assessment document handed to renderers.
type Payload struct {
	Fingerprint string             `json:"fingerprint"`
	FreeList    *FreeListSection   `json:"free_list,omitempty"`
	Dependency  *DependencySection `json:"dependency,omitempty"`
	Generics    []GenericSection   `json:"generics"`
	Sections    []ReportSection    `json:"sections"`
	ExtraBars   []Bar              `json:"extra_bars,omitempty"`
}

// FreeListSection lists the answers of the free-list questionnaire,
// frequency rows first.
type FreeListSection struct {
	Key   string              `json:"key"`
	Label string              `json:"label"`
	Rows  []scoring.AnswerRow `json:"rows"`
}

// DependencySection is the ADL/IADL block.
type DependencySection struct {
	Key               string         `json:"key"`
	Label             string         `json:"label"`
	ADLScore          float64        `json:"adl_score"`
	ADLMax            float64        `json:"adl_max"`
	IADLScore         float64        `json:"iadl_score"`
	IADLMax           float64        `json:"iadl_max"`
	DependencyPercent int            `json:"dependency_percent"`
	Severity          types.Severity `json:"severity"`
	Report            scoring.Report `json:"report"`
}

// GenericSection is one scored questionnaire.
type GenericSection struct {
	Key      string         `json:"key"`
	Label    string         `json:"label"`
	Score    int            `json:"score"`
	Severity types.Severity `json:"severity"`
	Report   scoring.Report `json:"report"`
}

// ReportSection is a titled two-column report.
type ReportSection struct {
	Label  string         `json:"label"`
	Report scoring.Report `json:"report"`
}

// Bar is a labeled percentage bar.
type Bar struct {
	Label   string         `json:"label"`
	Percent int            `json:"percent"`
	Color   types.BarColor `json:"color"`
}

// Empty reports whether no questionnaire contributed.
func (p *Payload) Empty() bool {
	return p.FreeList == nil && p.Dependency == nil && len(p.Generics) == 0
}

// ScoreBars returns the bars to draw: the dependency axes followed by one
// bar per generic section. Bars at or below zero are omitted.
func (p *Payload) ScoreBars() []Bar {
	all := append([]Bar(nil), p.ExtraBars...)
	for _, g := range p.Generics {
		all = append(all, Bar{Label: g.Label, Percent: g.Score, Color: types.BarColorOf(g.Severity)})
	}

	bars := make([]Bar, 0, len(all))
	for _, b := range all {
		if b.Percent > 0 {
			bars = append(bars, b)
		}
	}
	return bars
}

// seal computes the fingerprint from the canonical JSON of the content.
func (p *Payload) seal() error {
	p.Fingerprint = ""
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	p.Fingerprint = uuid.NewSHA1(payloadNamespace, data).String()
	return nil
}

// Package complexity supplies per-task complexity estimates to the engine.
// Estimates come from an external collaborator (typically a generated
// complexity report); the engine falls back to DefaultScore when a provider
// is absent, fails, or has no entry for a task.
package complexity

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultScore is used when no estimate is available for a task.
const DefaultScore = 5

// Clamp forces a score into the valid [1,10] range. Zero and negative
// values mean "unset" and take the default.
func Clamp(score int) int {
	if score <= 0 {
		return DefaultScore
	}
	if score > 10 {
		return 10
	}
	return score
}

// Provider loads a task-id to complexity mapping. Load is awaited once
// before an analysis begins; a failure degrades every task to DefaultScore
// rather than failing the analysis.
type Provider interface {
	Load(ctx context.Context) (map[string]int, error)
}

// StaticProvider serves a fixed mapping.
type StaticProvider map[string]int

// Load returns the mapping unchanged.
func (p StaticProvider) Load(_ context.Context) (map[string]int, error) {
	return p, nil
}

// TaskComplexity is the per-task entry of a complexity report.
type TaskComplexity struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	Score  int    `json:"score" yaml:"score"` // 1-10
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Stats buckets report entries by score band.
type Stats struct {
	Total  int `json:"total" yaml:"total"`
	Low    int `json:"low" yaml:"low"`       // score 1-3
	Medium int `json:"medium" yaml:"medium"` // 4-7
	High   int `json:"high" yaml:"high"`     // 8-10
}

// Report is the persisted payload produced by a complexity estimation run.
type Report struct {
	GeneratedAt time.Time        `json:"generated_at,omitempty" yaml:"generated_at,omitempty"`
	Tasks       []TaskComplexity `json:"tasks" yaml:"tasks"`
	Stats       Stats            `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// CalculateStats recomputes the score-band buckets from the entries.
func (r *Report) CalculateStats() {
	r.Stats = Stats{Total: len(r.Tasks)}
	for _, t := range r.Tasks {
		switch s := Clamp(t.Score); {
		case s <= 3:
			r.Stats.Low++
		case s <= 7:
			r.Stats.Medium++
		default:
			r.Stats.High++
		}
	}
}

// ReportProvider adapts a Report into a Provider.
type ReportProvider struct {
	report Report
}

// NewReportProvider wraps an already-parsed report.
func NewReportProvider(report Report) *ReportProvider {
	return &ReportProvider{report: report}
}

// Load maps report entries to clamped scores. Entries with empty ids are
// skipped; later duplicates win.
func (p *ReportProvider) Load(_ context.Context) (map[string]int, error) {
	scores := make(map[string]int, len(p.report.Tasks))
	for _, t := range p.report.Tasks {
		if t.ID == "" {
			continue
		}
		scores[t.ID] = Clamp(t.Score)
	}
	return scores, nil
}

// ParseReport decodes a JSON complexity report.
func ParseReport(data []byte) (Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("complexity: parse report: %w", err)
	}
	return r, nil
}

// LoadReport reads a report file, choosing the parser by extension.
func LoadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var r Report
		if err := yaml.Unmarshal(data, &r); err != nil {
			return Report{}, fmt.Errorf("complexity: parse report: %w", err)
		}
		return r, nil
	default:
		return ParseReport(data)
	}
}

package engine

import (
	"time"

	"github.com/mgrette/vantage/pkg/analyzer/bottleneck"
	"github.com/mgrette/vantage/pkg/analyzer/critpath"
	"github.com/mgrette/vantage/pkg/analyzer/cycles"
	"github.com/mgrette/vantage/pkg/analyzer/graph"
	"github.com/mgrette/vantage/pkg/analyzer/insight"
	"github.com/mgrette/vantage/pkg/analyzer/readiness"
)

// AnalysisResult is the complete output of one analysis run. Every
// collection is recomputed from scratch per run; nothing in here is
// mutated incrementally.
type AnalysisResult struct {
	GeneratedAt     time.Time                `json:"generated_at" toon:"generated_at"`
	Elapsed         time.Duration            `json:"elapsed" toon:"elapsed"`
	Summary         *graph.Summary           `json:"summary,omitempty" toon:"summary,omitempty"`
	Metrics         *graph.Metrics           `json:"metrics,omitempty" toon:"metrics,omitempty"`
	Scores          []readiness.Score        `json:"scores,omitempty" toon:"scores,omitempty"`
	ReadyTasks      []readiness.Score        `json:"ready_tasks,omitempty" toon:"ready_tasks,omitempty"`
	CriticalPath    *critpath.Path           `json:"critical_path,omitempty" toon:"critical_path,omitempty"`
	Bottlenecks     []bottleneck.Bottleneck  `json:"bottlenecks,omitempty" toon:"bottlenecks,omitempty"`
	Cycles          []cycles.Cycle           `json:"cycles,omitempty" toon:"cycles,omitempty"`
	Insights        []string                 `json:"insights,omitempty" toon:"insights,omitempty"`
	Recommendations []insight.Recommendation `json:"recommendations,omitempty" toon:"recommendations,omitempty"`

	// Error is set on analysis-fatal failures. Partial node-level faults
	// never surface here; they live on the affected Score entries.
	Error string `json:"error,omitempty" toon:"error,omitempty"`
}

// AnalyzeOptions adjusts a single Analyze call.
type AnalyzeOptions struct {
	// Weights overrides the configured scoring weights for this call only.
	Weights *readiness.Weights

	// SkipCache bypasses the cache lookup and forces a recomputation.
	// The fresh result is still stored.
	SkipCache bool
}

// EventType identifies an engine notification.
type EventType string

const (
	// EventAnalysisComplete fires for every produced result, including
	// cache hits and failure results.
	EventAnalysisComplete EventType = "analysis-complete"

	// EventConfigUpdated fires when the scoring weights change.
	EventConfigUpdated EventType = "config-updated"
)

// Event is delivered to the observer callback.
type Event struct {
	Type      EventType          `json:"type" toon:"type"`
	Result    *AnalysisResult    `json:"result,omitempty" toon:"result,omitempty"`
	Weights   *readiness.Weights `json:"weights,omitempty" toon:"weights,omitempty"`
	Timestamp time.Time          `json:"timestamp" toon:"timestamp"`
}

// Observer receives engine events. The callback runs synchronously on
// the calling goroutine; a slow observer slows the engine.
type Observer func(Event)

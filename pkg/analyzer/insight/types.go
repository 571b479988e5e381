package insight

import (
	"github.com/mgrette/vantage/pkg/analyzer/bottleneck"
	"github.com/mgrette/vantage/pkg/analyzer/critpath"
	"github.com/mgrette/vantage/pkg/analyzer/cycles"
	"github.com/mgrette/vantage/pkg/analyzer/graph"
)

// Recommendation types.
const (
	TypeNextTask          = "next-task"
	TypeResolveBottleneck = "resolve-bottleneck"
	TypeBreakCycle        = "break-cycle"
	TypeParallelWork      = "parallel-work"
)

// Recommendation is a concrete, actionable suggestion derived from the
// analysis results.
type Recommendation struct {
	Type        string   `json:"type" toon:"type"`
	Priority    string   `json:"priority" toon:"priority"`
	Title       string   `json:"title" toon:"title"`
	Description string   `json:"description" toon:"description"`
	TaskIDs     []string `json:"task_ids" toon:"task_ids"`
}

// Input collects the analysis pieces insights draw from. Any field may
// be left zero; the corresponding observations are skipped.
type Input struct {
	Graph       *graph.Graph
	Summary     *graph.Summary
	Metrics     *graph.Metrics
	Path        *critpath.Path
	Bottlenecks []bottleneck.Bottleneck
	Cycles      []cycles.Cycle
	ReadyCount  int
}

package insight

import (
	"fmt"
	"sort"

	"github.com/mgrette/vantage/pkg/analyzer/bottleneck"
	"github.com/mgrette/vantage/pkg/analyzer/cycles"
	"github.com/mgrette/vantage/pkg/analyzer/graph"
	"github.com/mgrette/vantage/pkg/analyzer/readiness"
	"github.com/mgrette/vantage/pkg/task"
)

// Generator turns raw analysis output into ready-task lists, templated
// observations, and recommendations.
type Generator struct {
	readyThreshold float64
	parallelLimit  int
}

// Option is a functional option for configuring Generator.
type Option func(*Generator)

// WithReadyThreshold sets the minimum total score for a ready task to
// count toward parallel work.
func WithReadyThreshold(v float64) Option {
	return func(g *Generator) {
		g.readyThreshold = v
	}
}

// WithParallelLimit caps how many tasks a parallel-work recommendation
// may carry.
func WithParallelLimit(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.parallelLimit = n
		}
	}
}

// New creates an insight generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		readyThreshold: 0.7,
		parallelLimit:  3,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FindReadyTasks filters the scored nodes down to those that can start
// right now: not finished, not already underway, and with every direct
// prerequisite done. Results sort by descending total score with
// ascending task id breaking ties. The scores slice must be in the
// graph's arena order, which is how the readiness scorer returns it.
func (gen *Generator) FindReadyTasks(g *graph.Graph, scores []readiness.Score) []readiness.Score {
	n := g.Len()
	if len(scores) < n {
		n = len(scores)
	}

	var ready []readiness.Score
	for i := 0; i < n; i++ {
		switch g.Nodes[i].Status {
		case task.StatusDone, task.StatusCancelled, task.StatusInProgress:
			continue
		}
		if scores[i].Dependency != 1.0 {
			continue
		}
		ready = append(ready, scores[i])
	}

	sort.Slice(ready, func(a, b int) bool {
		if ready[a].Total != ready[b].Total {
			return ready[a].Total > ready[b].Total
		}
		return ready[a].TaskID < ready[b].TaskID
	})
	return ready
}

// Insights renders templated observations over the aggregate results.
func (gen *Generator) Insights(in Input) []string {
	var out []string

	if in.Summary != nil && in.Summary.TotalNodes > 0 {
		out = append(out, fmt.Sprintf("%.0f%% of tasks are complete (%d of %d)",
			in.Summary.CompletionPercent, in.Summary.DoneCount, in.Summary.TotalNodes))
	}
	if in.Path != nil && in.Path.Length > 0 {
		out = append(out, fmt.Sprintf("critical path spans %d %s, roughly %d %s of work",
			in.Path.Length, plural(in.Path.Length, "task", "tasks"),
			in.Path.EstimatedDays, plural(in.Path.EstimatedDays, "day", "days")))
	}
	if len(in.Bottlenecks) > 0 {
		out = append(out, fmt.Sprintf("%d %s slowing downstream work",
			len(in.Bottlenecks), plural(len(in.Bottlenecks), "bottleneck is", "bottlenecks are")))
	}
	if in.ReadyCount > 0 {
		out = append(out, fmt.Sprintf("%d %s ready to pick up now",
			in.ReadyCount, plural(in.ReadyCount, "task is", "tasks are")))
	}
	if len(in.Cycles) > 0 {
		out = append(out, fmt.Sprintf("%d circular dependency %s to be broken",
			len(in.Cycles), plural(len(in.Cycles), "chain needs", "chains need")))
	}
	if id, ok := gen.connector(in); ok {
		out = append(out, fmt.Sprintf("task %s sits on the most dependency paths; completing it frees the most downstream work", id))
	}

	return out
}

// connector picks the unfinished task with the highest PageRank, the
// one the rest of the graph leans on hardest. Rank only separates
// nodes once dependency edges exist, so graphs without any are skipped.
func (gen *Generator) connector(in Input) (string, bool) {
	if in.Graph == nil || in.Metrics == nil || in.Summary == nil || in.Summary.DependencyEdges == 0 {
		return "", false
	}

	best := -1
	n := in.Graph.Len()
	if len(in.Metrics.NodeMetrics) < n {
		n = len(in.Metrics.NodeMetrics)
	}
	for i := 0; i < n; i++ {
		if in.Graph.Nodes[i].Status.IsTerminal() {
			continue
		}
		if best < 0 || in.Metrics.NodeMetrics[i].PageRank > in.Metrics.NodeMetrics[best].PageRank {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return in.Metrics.NodeMetrics[best].NodeID, true
}

// Recommendations derives next actions from the analysis output: the
// single best task to start, the worst bottleneck to clear, the first
// dependency loop to break, and a batch of high-scoring ready tasks
// that can proceed in parallel.
func (gen *Generator) Recommendations(ready []readiness.Score, bottlenecks []bottleneck.Bottleneck, cycs []cycles.Cycle) []Recommendation {
	var recs []Recommendation

	if len(ready) > 0 {
		top := ready[0]
		recs = append(recs, Recommendation{
			Type:        TypeNextTask,
			Priority:    "high",
			Title:       fmt.Sprintf("Start task %s next", top.TaskID),
			Description: fmt.Sprintf("%q has the highest readiness score (%.2f) of all unblocked tasks", top.Title, top.Total),
			TaskIDs:     []string{top.TaskID},
		})
	}

	if len(bottlenecks) > 0 {
		top := bottlenecks[0]
		recs = append(recs, Recommendation{
			Type:        TypeResolveBottleneck,
			Priority:    "high",
			Title:       fmt.Sprintf("Resolve bottleneck %s", top.TaskID),
			Description: fmt.Sprintf("%s: %s", top.Reason, top.Suggestion),
			TaskIDs:     []string{top.TaskID},
		})
	}

	if len(cycs) > 0 {
		ids := make([]string, 0, len(cycs[0].Nodes))
		for _, ref := range cycs[0].Nodes {
			ids = append(ids, ref.ID)
		}
		recs = append(recs, Recommendation{
			Type:        TypeBreakCycle,
			Priority:    "high",
			Title:       fmt.Sprintf("Break the dependency cycle involving task %s", ids[0]),
			Description: fmt.Sprintf("this chain of %d %s forms a dependency loop; nothing in it can finish until one dependency is removed", cycs[0].Length, plural(cycs[0].Length, "task", "tasks")),
			TaskIDs:     ids,
		})
	}

	if parallel := gen.parallelIDs(ready); len(parallel) > 1 {
		recs = append(recs, Recommendation{
			Type:        TypeParallelWork,
			Priority:    "medium",
			Title:       fmt.Sprintf("Work %d tasks in parallel", len(parallel)),
			Description: fmt.Sprintf("these tasks are all unblocked and score above %.1f", gen.readyThreshold),
			TaskIDs:     parallel,
		})
	}

	return recs
}

// parallelIDs picks the highest-scoring ready tasks above the
// threshold, up to the parallel limit.
func (gen *Generator) parallelIDs(ready []readiness.Score) []string {
	var ids []string
	for _, sc := range ready {
		if sc.Total <= gen.readyThreshold {
			continue
		}
		ids = append(ids, sc.TaskID)
		if len(ids) == gen.parallelLimit {
			break
		}
	}
	return ids
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

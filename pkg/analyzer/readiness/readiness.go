package readiness

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/mgrette/vantage/pkg/analyzer"
	"github.com/mgrette/vantage/pkg/analyzer/graph"
	"github.com/mgrette/vantage/pkg/task"
)

// Scorer computes readiness scores for task graph nodes.
type Scorer struct {
	weights Weights
	workers int
}

// Option is a functional option for configuring Scorer.
type Option func(*Scorer)

// WithWeights sets the factor weights.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// WithWorkers sets the number of concurrent scoring goroutines.
func WithWorkers(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New creates a readiness scorer.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		weights: DefaultWeights(),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compile-time check that Scorer implements GraphAnalyzer.
var _ analyzer.GraphAnalyzer[[]Score] = (*Scorer)(nil)

// Weights returns the scorer's current factor weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Analyze scores every node in the graph. Nodes score independently of
// each other, so the batch fans out across a bounded goroutine pool;
// the returned slice keeps arena order. A fault in one node degrades
// that node's score and never aborts the batch.
func (s *Scorer) Analyze(ctx context.Context, g *graph.Graph) ([]Score, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tracker := analyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Add(g.Len())
	}

	scores := make([]Score, g.Len())
	p := pool.New().WithMaxGoroutines(s.workers)
	for i := range g.Nodes {
		p.Go(func() {
			scores[i] = s.scoreSafe(g, int32(i))
			if tracker != nil {
				tracker.Tick(g.Nodes[i].ID)
			}
		})
	}
	p.Wait()

	return scores, nil
}

// Close releases scorer resources.
func (s *Scorer) Close() {}

// ScoreNode computes the readiness breakdown for the node at index i.
// Terminal tasks short-circuit to an all-zero score with a reason.
func (s *Scorer) ScoreNode(g *graph.Graph, i int32) Score {
	n := &g.Nodes[i]
	sc := Score{TaskID: n.ID, Title: n.Title}

	if n.Status == task.StatusDone || n.Status == task.StatusCancelled {
		sc.Reason = "task is already " + n.Status.String()
		return sc
	}

	sc.Dependency = dependencyScore(g, i)
	sc.Complexity = complexityScore(n.Complexity)
	sc.Context = contextScore(n)
	sc.Priority = priorityScore(n.Priority)
	sc.Total = s.weightedTotal(sc)
	return sc
}

// scoreSafe wraps ScoreNode so a panic while scoring one node becomes
// that node's error annotation instead of taking down the run.
func (s *Scorer) scoreSafe(g *graph.Graph, i int32) (sc Score) {
	defer func() {
		if r := recover(); r != nil {
			sc = Score{
				TaskID: sc.TaskID,
				Title:  sc.Title,
				Error:  fmt.Sprintf("scoring failed: %v", r),
			}
		}
	}()
	sc.TaskID = g.Nodes[i].ID
	sc.Title = g.Nodes[i].Title
	return s.ScoreNode(g, i)
}

// dependencyScore is the fraction of direct prerequisites already done.
// A node with no prerequisites is fully unblocked.
func dependencyScore(g *graph.Graph, i int32) float64 {
	deps := g.Dependencies(i)
	if len(deps) == 0 {
		return 1.0
	}
	done := 0
	for _, d := range deps {
		if g.Nodes[d].Status == task.StatusDone {
			done++
		}
	}
	return float64(done) / float64(len(deps))
}

// complexityScore rewards manageable work: a complexity of 1 scores
// 1.0 and a complexity of 10 scores 0.
func complexityScore(c int) float64 {
	return clamp01(float64(10-c) / 9)
}

// contextScore is a heuristic for current relevance built from the
// node's priority and activity status.
func contextScore(n *graph.Node) float64 {
	v := 0.5
	switch n.Priority {
	case task.PriorityHigh:
		v += 0.3
	case task.PriorityMedium:
		v += 0.1
	}
	switch n.Status {
	case task.StatusInProgress:
		v += 0.4
	case task.StatusPending:
		v += 0.2
	}
	return clamp01(v)
}

// priorityScore maps a priority level to a score, with 0.5 for
// anything outside the known set.
func priorityScore(p task.Priority) float64 {
	switch p {
	case task.PriorityHigh:
		return 1.0
	case task.PriorityMedium:
		return 0.6
	case task.PriorityLow:
		return 0.3
	default:
		return 0.5
	}
}

// weightedTotal averages the factors by the configured weights,
// normalized by the weight mass actually applied. Non-positive weights
// drop their factor; if every weight is dropped the total is zero.
func (s *Scorer) weightedTotal(sc Score) float64 {
	factors := []struct {
		weight float64
		value  float64
	}{
		{s.weights.Dependency, sc.Dependency},
		{s.weights.Complexity, sc.Complexity},
		{s.weights.Context, sc.Context},
		{s.weights.Priority, sc.Priority},
	}

	var sum, mass float64
	for _, f := range factors {
		if f.weight <= 0 {
			continue
		}
		sum += f.weight * f.value
		mass += f.weight
	}
	if mass == 0 {
		return 0
	}
	return sum / mass
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

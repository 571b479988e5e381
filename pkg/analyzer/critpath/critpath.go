package critpath

import (
	"context"

	"github.com/mgrette/vantage/pkg/analyzer"
	"github.com/mgrette/vantage/pkg/analyzer/graph"
)

// Analyzer finds the critical path of a task graph: the longest chain
// of dependency-linked tasks, which bounds the minimum time to finish
// the remaining work.
type Analyzer struct{}

// New creates a critical path analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Compile-time check that Analyzer implements GraphAnalyzer.
var _ analyzer.GraphAnalyzer[*Path] = (*Analyzer)(nil)

// Analyze computes the critical path with a topological-order dynamic
// programming pass: process nodes in Kahn order, record each node's
// longest backward chain, then pick the best chain ending at a leaf (a
// node nothing depends on). Longest chain wins; ties keep the first
// encountered node, so results are deterministic for identical input.
// Nodes caught in a dependency cycle never enter the topological
// order and are left out of the path; the cycle detector reports them.
func (a *Analyzer) Analyze(ctx context.Context, g *graph.Graph) (*Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := &Path{Confidence: ConfidenceLow}
	if g.Len() == 0 || g.DependencyEdgeCount() == 0 {
		return p, nil
	}

	n := g.Len()
	indeg := make([]int, n)
	for i := 0; i < n; i++ {
		indeg[i] = len(g.Dependencies(int32(i)))
	}

	order := make([]int32, 0, n)
	queue := make([]int32, 0, n)
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			queue = append(queue, int32(i))
		}
	}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		order = append(order, u)
		for _, v := range g.Dependents(u) {
			indeg[v]--
			if indeg[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	// chainLen[i] is the number of nodes on the longest prerequisite
	// chain ending at i; zero means i never left the cycle.
	chainLen := make([]int, n)
	prev := make([]int32, n)
	for i := range prev {
		prev[i] = -1
	}
	for _, u := range order {
		best := 0
		bestPrev := int32(-1)
		for _, d := range g.Dependencies(u) {
			if chainLen[d] > best {
				best = chainLen[d]
				bestPrev = d
			}
		}
		chainLen[u] = best + 1
		prev[u] = bestPrev
	}

	end := int32(-1)
	for i := 0; i < n; i++ {
		if chainLen[i] == 0 || len(g.Dependents(int32(i))) > 0 {
			continue
		}
		if end < 0 || chainLen[i] > chainLen[end] {
			end = int32(i)
		}
	}
	if end < 0 {
		return p, nil
	}

	chain := make([]int32, 0, chainLen[end])
	for i := end; i >= 0; i = prev[i] {
		chain = append(chain, i)
	}
	for l, r := 0, len(chain)-1; l < r; l, r = l+1, r-1 {
		chain[l], chain[r] = chain[r], chain[l]
	}

	p.Nodes = make([]graph.Node, 0, len(chain))
	for _, i := range chain {
		p.Nodes = append(p.Nodes, g.Nodes[i])
		p.TotalComplexity += g.Nodes[i].Complexity
	}
	p.Length = len(p.Nodes)
	p.EstimatedDays = estimateDays(p.TotalComplexity)
	return p, nil
}

// Close releases analyzer resources.
func (a *Analyzer) Close() {}

// estimateDays converts summed complexity to a whole-day figure at a
// nominal two complexity points per day, rounding up.
func estimateDays(totalComplexity int) int {
	return (totalComplexity + 1) / 2
}

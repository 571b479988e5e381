package graph

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/mgrette/vantage/pkg/complexity"
	"github.com/mgrette/vantage/pkg/task"
)

// Builder constructs dependency graphs from task collections.
type Builder struct {
	scores       map[string]int
	defaultScore int
}

// Option is a functional option for configuring Builder.
type Option func(*Builder)

// WithComplexity supplies external complexity scores keyed by task id.
func WithComplexity(scores map[string]int) Option {
	return func(b *Builder) {
		b.scores = scores
	}
}

// WithDefaultComplexity sets the fallback score for tasks that carry no
// explicit complexity and have no entry in the score map.
func WithDefaultComplexity(score int) Option {
	return func(b *Builder) {
		b.defaultScore = complexity.Clamp(score)
	}
}

// NewBuilder creates a graph builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		defaultScore: complexity.DefaultScore,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// taggedTask pairs a task with the namespace it was declared under.
type taggedTask struct {
	t   task.Task
	tag string
}

// Build constructs a graph from a collection. It is a pure function of
// its input: groups are visited in sorted name order so node order is
// deterministic, the first node to claim an id wins, and dependency
// references to unknown ids are dropped without error.
func (b *Builder) Build(c *task.Collection) *Graph {
	g := NewGraph()
	if c == nil {
		return g
	}

	flat := flatten(c)

	// First pass: materialize every task and subtask as a node so that
	// forward dependency references resolve in the second pass.
	for _, tt := range flat {
		if tt.t.ID == "" {
			continue
		}
		g.addNode(Node{
			ID:         tt.t.ID,
			Title:      tt.t.Title,
			Status:     tt.t.Status,
			Priority:   tt.t.Priority,
			Tag:        tt.tag,
			Complexity: b.resolveScore(tt.t),
		})
		for _, st := range tt.t.Subtasks {
			if st.ID == "" {
				continue
			}
			g.addNode(Node{
				ID:         st.ID,
				Title:      st.Title,
				Status:     st.Status,
				Priority:   st.Priority,
				Tag:        tt.tag,
				Complexity: b.resolveScore(st),
				ParentID:   tt.t.ID,
				IsSubtask:  true,
			})
		}
	}

	// Second pass: link edges now that every id is indexed. Repeated
	// declarations of the same dependency collapse to a single edge,
	// and each subtask node gets exactly one parent-child edge.
	depSeen := make(map[[2]int32]struct{})
	childLinked := make(map[int32]bool)

	link := func(depID, dependentID string) {
		from, ok := g.IndexOf(depID)
		if !ok {
			return
		}
		to, ok := g.IndexOf(dependentID)
		if !ok {
			return
		}
		key := [2]int32{from, to}
		if _, dup := depSeen[key]; dup {
			return
		}
		depSeen[key] = struct{}{}
		g.addDependency(from, to)
	}

	for _, tt := range flat {
		for _, dep := range tt.t.Dependencies {
			link(dep, tt.t.ID)
		}
		for _, st := range tt.t.Subtasks {
			for _, dep := range st.Dependencies {
				link(dep, st.ID)
			}
			ci, ok := g.IndexOf(st.ID)
			if !ok || childLinked[ci] {
				continue
			}
			if !g.Nodes[ci].IsSubtask || g.Nodes[ci].ParentID != tt.t.ID {
				continue
			}
			pi, ok := g.IndexOf(tt.t.ID)
			if !ok {
				continue
			}
			childLinked[ci] = true
			g.addChild(pi, ci)
		}
	}

	return g
}

// flatten expands a collection into (task, tag) pairs. Namespaced
// groups are visited in sorted name order; the flat form carries an
// empty tag. When both forms are present the namespaced one wins.
func flatten(c *task.Collection) []taggedTask {
	if c.Groups != nil {
		names := make([]string, 0, len(c.Groups))
		for name := range c.Groups {
			names = append(names, name)
		}
		sort.Strings(names)
		var flat []taggedTask
		for _, name := range names {
			for _, t := range c.Groups[name].Tasks {
				flat = append(flat, taggedTask{t: t, tag: name})
			}
		}
		return flat
	}
	flat := make([]taggedTask, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		flat = append(flat, taggedTask{t: t})
	}
	return flat
}

// resolveScore picks the complexity for a task: its own explicit value,
// then the external score map, then the builder default.
func (b *Builder) resolveScore(t task.Task) int {
	if t.Complexity > 0 {
		return complexity.Clamp(t.Complexity)
	}
	if s, ok := b.scores[t.ID]; ok && s > 0 {
		return complexity.Clamp(s)
	}
	return b.defaultScore
}

// toGonum converts dependency edges to a gonum directed graph. Edges
// are oriented dependent -> prerequisite so that PageRank mass flows
// toward foundational tasks. Self-loops are skipped because gonum
// simple graphs reject them.
func toGonum(g *Graph) *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	for i := range g.Nodes {
		dg.AddNode(simple.Node(int64(i)))
	}
	for to, prereqs := range g.deps {
		for _, from := range prereqs {
			if from == int32(to) {
				continue
			}
			dg.SetEdge(simple.Edge{F: simple.Node(int64(to)), T: simple.Node(int64(from))})
		}
	}
	return dg
}

// CalculateSummary computes aggregate statistics for a graph. Cycle
// figures come from Tarjan SCC over dependency edges and therefore
// cover cycles of length two or more; single-node self-loops are the
// cycle detector's concern.
func CalculateSummary(g *Graph) *Summary {
	s := &Summary{
		TotalNodes: g.Len(),
		TotalEdges: len(g.Edges),
	}
	for _, e := range g.Edges {
		switch e.Kind {
		case EdgeDependency:
			s.DependencyEdges++
		case EdgeParentChild:
			s.ParentChildEdges++
		}
	}
	if g.Len() == 0 {
		return s
	}

	totalDegree := 0
	done := 0
	for i := range g.Nodes {
		totalDegree += len(g.deps[i]) + len(g.dependents[i])
		if g.Nodes[i].Status == task.StatusDone {
			done++
		}
	}
	s.AvgDegree = float64(totalDegree) / float64(g.Len())
	if g.Len() > 1 {
		maxEdges := g.Len() * (g.Len() - 1)
		s.Density = float64(s.DependencyEdges) / float64(maxEdges)
	}
	s.DoneCount = done
	s.CompletionPercent = float64(done) / float64(g.Len()) * 100

	sccs := topo.TarjanSCC(toGonum(g))
	s.StronglyConnectedComponents = len(sccs)
	for _, scc := range sccs {
		if len(scc) > 1 {
			s.CycleCount++
		}
	}
	s.IsCyclic = s.CycleCount > 0

	return s
}

// CalculateMetrics computes PageRank and degree metrics for every node.
// Rank flows from dependents to their prerequisites, so the tasks that
// many chains ultimately rest on score highest.
func CalculateMetrics(g *Graph) *Metrics {
	m := &Metrics{NodeMetrics: make([]NodeMetric, 0, g.Len())}
	if g.Len() == 0 {
		return m
	}

	rank := network.PageRank(toGonum(g), 0.85, 1e-6)
	for i := range g.Nodes {
		m.NodeMetrics = append(m.NodeMetrics, NodeMetric{
			NodeID:    g.Nodes[i].ID,
			Title:     g.Nodes[i].Title,
			PageRank:  rank[int64(i)],
			InDegree:  len(g.deps[i]),
			OutDegree: len(g.dependents[i]),
		})
	}
	return m
}

// ImpactSet returns the arena indexes of every node that transitively
// depends on node i, found by breadth-first search over dependent
// links. The node itself is excluded even when a cycle leads back.
func (g *Graph) ImpactSet(i int32) *roaring.Bitmap {
	impacted := roaring.New()
	queue := make([]int32, 0, len(g.dependents[i]))
	queue = append(queue, g.dependents[i]...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if impacted.Contains(uint32(cur)) {
			continue
		}
		impacted.Add(uint32(cur))
		queue = append(queue, g.dependents[cur]...)
	}
	impacted.Remove(uint32(i))
	return impacted
}

// ImpactCount returns the number of nodes that transitively depend on
// node i.
func (g *Graph) ImpactCount(i int32) int {
	return int(g.ImpactSet(i).GetCardinality())
}

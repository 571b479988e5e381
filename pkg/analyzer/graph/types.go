package graph

import "github.com/mgrette/vantage/pkg/task"

// Node represents a task in the dependency graph.
type Node struct {
	ID         string        `json:"id" toon:"id"`
	Title      string        `json:"title" toon:"title"`
	Status     task.Status   `json:"status" toon:"status"`
	Priority   task.Priority `json:"priority,omitempty" toon:"priority,omitempty"`
	Tag        string        `json:"tag,omitempty" toon:"tag,omitempty"`
	Complexity int           `json:"complexity" toon:"complexity"` // 1-10
	ParentID   string        `json:"parent_id,omitempty" toon:"parent_id,omitempty"`
	IsSubtask  bool          `json:"is_subtask,omitempty" toon:"is_subtask,omitempty"`
}

// EdgeKind represents the relation an edge expresses.
type EdgeKind string

const (
	// EdgeDependency means the To node requires the From node to be
	// complete before it can start.
	EdgeDependency EdgeKind = "dependency"
	// EdgeParentChild expresses containment from a task to its subtask,
	// not execution order.
	EdgeParentChild EdgeKind = "parent-child"
)

// String returns the string representation.
func (k EdgeKind) String() string {
	return string(k)
}

// Edge represents a directed relation between two nodes.
type Edge struct {
	From string   `json:"from" toon:"from"`
	To   string   `json:"to" toon:"to"`
	Kind EdgeKind `json:"kind" toon:"kind"`
}

// Graph is an arena of task nodes with index-keyed adjacency lists.
// Nodes and Edges preserve build order; all traversal goes through the
// integer-index adjacency so hot paths never scan the edge list.
type Graph struct {
	Nodes []Node `json:"nodes" toon:"nodes"`
	Edges []Edge `json:"edges" toon:"edges"`

	index      map[string]int32
	deps       [][]int32 // deps[i] = direct prerequisites of node i
	dependents [][]int32 // dependents[i] = nodes that require node i
	children   [][]int32 // children[i] = subtask nodes contained by i
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
		index: make(map[string]int32),
	}
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.Nodes)
}

// IndexOf returns the arena index for a node id.
func (g *Graph) IndexOf(id string) (int32, bool) {
	i, ok := g.index[id]
	return i, ok
}

// NodeByID returns the node with the given id.
func (g *Graph) NodeByID(id string) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.Nodes[i], true
}

// Dependencies returns the direct prerequisite indices of node i.
func (g *Graph) Dependencies(i int32) []int32 {
	return g.deps[i]
}

// Dependents returns the indices of nodes that require node i.
func (g *Graph) Dependents(i int32) []int32 {
	return g.dependents[i]
}

// Children returns the subtask indices contained by node i.
func (g *Graph) Children(i int32) []int32 {
	return g.children[i]
}

// DependencyEdgeCount returns the number of dependency edges.
func (g *Graph) DependencyEdgeCount() int {
	n := 0
	for _, e := range g.Edges {
		if e.Kind == EdgeDependency {
			n++
		}
	}
	return n
}

// addNode appends a node and indexes its id. The first occurrence of an
// id wins; later duplicates are dropped.
func (g *Graph) addNode(n Node) bool {
	if _, exists := g.index[n.ID]; exists {
		return false
	}
	g.index[n.ID] = int32(len(g.Nodes))
	g.Nodes = append(g.Nodes, n)
	g.deps = append(g.deps, nil)
	g.dependents = append(g.dependents, nil)
	g.children = append(g.children, nil)
	return true
}

// addDependency links prerequisite from -> dependent to. Both ids must
// already be indexed.
func (g *Graph) addDependency(from, to int32) {
	g.Edges = append(g.Edges, Edge{From: g.Nodes[from].ID, To: g.Nodes[to].ID, Kind: EdgeDependency})
	g.deps[to] = append(g.deps[to], from)
	g.dependents[from] = append(g.dependents[from], to)
}

// addChild links parent -> subtask containment.
func (g *Graph) addChild(parent, child int32) {
	g.Edges = append(g.Edges, Edge{From: g.Nodes[parent].ID, To: g.Nodes[child].ID, Kind: EdgeParentChild})
	g.children[parent] = append(g.children[parent], child)
}

// Summary provides aggregate graph statistics.
type Summary struct {
	TotalNodes                  int     `json:"total_nodes" toon:"total_nodes"`
	TotalEdges                  int     `json:"total_edges" toon:"total_edges"`
	DependencyEdges             int     `json:"dependency_edges" toon:"dependency_edges"`
	ParentChildEdges            int     `json:"parent_child_edges" toon:"parent_child_edges"`
	AvgDegree                   float64 `json:"avg_degree" toon:"avg_degree"`
	Density                     float64 `json:"density" toon:"density"`
	StronglyConnectedComponents int     `json:"strongly_connected_components" toon:"strongly_connected_components"`
	CycleCount                  int     `json:"cycle_count" toon:"cycle_count"`
	IsCyclic                    bool    `json:"is_cyclic" toon:"is_cyclic"`
	DoneCount                   int     `json:"done_count" toon:"done_count"`
	CompletionPercent           float64 `json:"completion_percent" toon:"completion_percent"`
}

// Metrics represents centrality metrics over dependency edges.
type Metrics struct {
	NodeMetrics []NodeMetric `json:"node_metrics" toon:"node_metrics"`
}

// NodeMetric represents computed metrics for a single node.
type NodeMetric struct {
	NodeID    string  `json:"node_id" toon:"node_id"`
	Title     string  `json:"title" toon:"title"`
	PageRank  float64 `json:"pagerank" toon:"pagerank"`
	InDegree  int     `json:"in_degree" toon:"in_degree"`   // direct prerequisites
	OutDegree int     `json:"out_degree" toon:"out_degree"` // direct dependents
}

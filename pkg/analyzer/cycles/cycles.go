package cycles

import (
	"context"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/mgrette/vantage/pkg/analyzer"
	"github.com/mgrette/vantage/pkg/analyzer/graph"
)

// Detector finds circular dependencies in a task graph.
type Detector struct{}

// New creates a cycle detector.
func New() *Detector {
	return &Detector{}
}

// Compile-time check that Detector implements GraphAnalyzer.
var _ analyzer.GraphAnalyzer[[]Cycle] = (*Detector)(nil)

// Analyze runs a depth-first search over prerequisite links. Stack
// membership lives in an index-keyed position array, so hitting a
// prerequisite that is still on the active stack slices the current
// path into a cycle in constant time. Every reported cycle is rotated
// to start at its lowest id and de-duplicated by signature, so the
// same loop never surfaces twice no matter where traversal entered it.
func (d *Detector) Analyze(ctx context.Context, g *graph.Graph) ([]Cycle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := g.Len()
	visited := make([]bool, n)
	// pathPos[i] is i's position on the active DFS stack, -1 when off.
	pathPos := make([]int, n)
	for i := range pathPos {
		pathPos[i] = -1
	}
	path := make([]int32, 0, n)

	var found []Cycle
	seen := make(map[uint64]struct{})

	record := func(start int) {
		ids := make([]string, 0, len(path)-start)
		for _, u := range path[start:] {
			ids = append(ids, g.Nodes[u].ID)
		}
		ids = rotateToLowest(ids)
		sig := xxhash.Sum64String(strings.Join(ids, "->"))
		if _, dup := seen[sig]; dup {
			return
		}
		seen[sig] = struct{}{}

		c := Cycle{Nodes: make([]Ref, 0, len(ids)), Length: len(ids)}
		for _, id := range ids {
			node, _ := g.NodeByID(id)
			c.Nodes = append(c.Nodes, Ref{ID: id, Title: node.Title})
		}
		found = append(found, c)
	}

	var dfs func(u int32)
	dfs = func(u int32) {
		visited[u] = true
		pathPos[u] = len(path)
		path = append(path, u)

		for _, p := range g.Dependencies(u) {
			if pathPos[p] >= 0 {
				record(pathPos[p])
				continue
			}
			if !visited[p] {
				dfs(p)
			}
		}

		path = path[:len(path)-1]
		pathPos[u] = -1
	}

	for i := 0; i < n; i++ {
		if !visited[i] {
			dfs(int32(i))
		}
	}

	return found, nil
}

// Close releases detector resources.
func (d *Detector) Close() {}

// rotateToLowest rotates the id sequence so the lexicographically
// smallest id leads, giving every loop one canonical spelling.
func rotateToLowest(ids []string) []string {
	if len(ids) < 2 {
		return ids
	}
	low := 0
	for i := 1; i < len(ids); i++ {
		if ids[i] < ids[low] {
			low = i
		}
	}
	if low == 0 {
		return ids
	}
	rotated := make([]string, 0, len(ids))
	rotated = append(rotated, ids[low:]...)
	rotated = append(rotated, ids[:low]...)
	return rotated
}

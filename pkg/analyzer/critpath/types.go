package critpath

import "github.com/mgrette/vantage/pkg/analyzer/graph"

// ConfidenceLow marks the duration estimate as a heuristic. The
// analyzer has no effort history to draw on, so it never claims better.
const ConfidenceLow = "low"

// Path is the longest prerequisite chain in the graph, ordered from
// the foundational task to the terminal one.
type Path struct {
	Nodes           []graph.Node `json:"nodes" toon:"nodes"`
	Length          int          `json:"length" toon:"length"`
	TotalComplexity int          `json:"total_complexity" toon:"total_complexity"`
	EstimatedDays   int          `json:"estimated_days" toon:"estimated_days"`
	Confidence      string       `json:"confidence" toon:"confidence"`
}

package graph

import (
	"strconv"
	"strings"

	"github.com/mgrette/vantage/pkg/task"
)

// MermaidOptions configures Mermaid diagram generation.
type MermaidOptions struct {
	MaxNodes   int              `json:"max_nodes" toon:"max_nodes"`
	MaxEdges   int              `json:"max_edges" toon:"max_edges"`
	ShowStatus bool             `json:"show_status" toon:"show_status"`
	Direction  MermaidDirection `json:"direction" toon:"direction"`
}

// MermaidDirection specifies the graph direction.
type MermaidDirection string

const (
	DirectionTD MermaidDirection = "TD" // Top-down
	DirectionLR MermaidDirection = "LR" // Left-right
	DirectionBT MermaidDirection = "BT" // Bottom-top
	DirectionRL MermaidDirection = "RL" // Right-left
)

// DefaultMermaidOptions returns sensible defaults.
func DefaultMermaidOptions() MermaidOptions {
	return MermaidOptions{
		MaxNodes:   50,
		MaxEdges:   150,
		ShowStatus: true,
		Direction:  DirectionTD,
	}
}

// mermaidClasses maps status classes to fill colors in emission order.
var mermaidClasses = []struct {
	name string
	fill string
}{
	{"pending", "#F5F5F5"},
	{"active", "#FFD700"},
	{"done", "#90EE90"},
	{"blocked", "#FF6347"},
	{"cancelled", "#D3D3D3"},
	{"deferred", "#DDA0DD"},
	{"review", "#87CEEB"},
}

// ToMermaid generates Mermaid diagram syntax using default options.
func (g *Graph) ToMermaid() string {
	return g.ToMermaidWithOptions(DefaultMermaidOptions())
}

// ToMermaidWithOptions generates Mermaid diagram syntax with custom
// options. Dependency edges render as solid arrows from prerequisite
// to dependent; parent-child containment renders as dotted arrows.
func (g *Graph) ToMermaidWithOptions(opts MermaidOptions) string {
	direction := opts.Direction
	if direction == "" {
		direction = DirectionTD
	}

	nodes := g.Nodes
	edges := g.Edges

	// Prune oversized graphs so the diagram stays renderable.
	if opts.MaxNodes > 0 && len(nodes) > opts.MaxNodes {
		nodes = nodes[:opts.MaxNodes]
		kept := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			kept[n.ID] = true
		}
		var filtered []Edge
		for _, e := range edges {
			if kept[e.From] && kept[e.To] {
				filtered = append(filtered, e)
			}
		}
		edges = filtered
	}
	if opts.MaxEdges > 0 && len(edges) > opts.MaxEdges {
		edges = edges[:opts.MaxEdges]
	}

	var sb strings.Builder
	sb.WriteString("graph ")
	sb.WriteString(string(direction))
	sb.WriteString("\n")

	usedClasses := make(map[string]bool)
	for _, node := range nodes {
		label := EscapeMermaidLabel(node.Title)
		if label == "" {
			label = EscapeMermaidLabel(node.ID)
		}
		if node.Complexity > 0 {
			label += " (" + strconv.Itoa(node.Complexity) + ")"
		}
		id := SanitizeMermaidID(node.ID)

		if opts.ShowStatus {
			cls := statusClass(node)
			usedClasses[cls] = true
			sb.WriteString("    " + id + "[\"" + label + "\"]:::" + cls + "\n")
		} else {
			sb.WriteString("    " + id + "[\"" + label + "\"]\n")
		}
	}

	for _, edge := range edges {
		from := SanitizeMermaidID(edge.From)
		to := SanitizeMermaidID(edge.To)
		sb.WriteString("    " + from + " " + edgeArrow(edge.Kind) + " " + to + "\n")
	}

	if opts.ShowStatus {
		for _, c := range mermaidClasses {
			if usedClasses[c.name] {
				sb.WriteString("    classDef " + c.name + " fill:" + c.fill + "\n")
			}
		}
	}

	return sb.String()
}

// statusClass returns the diagram class for a node's status. Statuses
// outside the known set render as pending.
func statusClass(n Node) string {
	switch n.Status {
	case task.StatusInProgress:
		return "active"
	case task.StatusDone:
		return "done"
	case task.StatusBlocked:
		return "blocked"
	case task.StatusCancelled:
		return "cancelled"
	case task.StatusDeferred:
		return "deferred"
	case task.StatusReview:
		return "review"
	default:
		return "pending"
	}
}

// edgeArrow returns the Mermaid arrow notation for an edge kind.
func edgeArrow(k EdgeKind) string {
	switch k {
	case EdgeParentChild:
		return "-.->"
	default:
		return "-->"
	}
}

// SanitizeMermaidID makes an id safe for Mermaid diagrams.
func SanitizeMermaidID(id string) string {
	if id == "" {
		return "empty"
	}
	var sb strings.Builder
	sb.Grow(len(id) + 1)
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			sb.WriteByte(c)
		} else {
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	// Mermaid ids must not start with a digit.
	if out[0] >= '0' && out[0] <= '9' {
		out = "n" + out
	}
	return out
}

// EscapeMermaidLabel escapes special characters in labels for Mermaid.
func EscapeMermaidLabel(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			sb.WriteString("&amp;")
		case '"':
			sb.WriteString("&quot;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '|':
			sb.WriteString("&#124;")
		case '[':
			sb.WriteString("&#91;")
		case ']':
			sb.WriteString("&#93;")
		case '{':
			sb.WriteString("&#123;")
		case '}':
			sb.WriteString("&#125;")
		case '\n':
			sb.WriteString("<br/>")
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

package bottleneck

import (
	"context"
	"sort"

	"github.com/mgrette/vantage/pkg/analyzer"
	"github.com/mgrette/vantage/pkg/analyzer/graph"
)

// Detector flags tasks that put overall progress at risk.
type Detector struct {
	thresholds Thresholds
}

// Option is a functional option for configuring Detector.
type Option func(*Detector)

// WithThresholds overrides the qualification thresholds.
func WithThresholds(t Thresholds) Option {
	return func(d *Detector) {
		d.thresholds = t
	}
}

// New creates a bottleneck detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Compile-time check that Detector implements GraphAnalyzer.
var _ analyzer.GraphAnalyzer[[]Bottleneck] = (*Detector)(nil)

// Analyze scans every node and keeps the ones whose dependent count or
// complexity crosses a threshold. Severity weighs dependents over
// complexity (0.6 to 0.4); results sort by descending severity with
// ascending id as the tie-break, so equal-severity output is stable.
func (d *Detector) Analyze(ctx context.Context, g *graph.Graph) ([]Bottleneck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var found []Bottleneck
	for i := range g.Nodes {
		n := &g.Nodes[i]
		dc := len(g.Dependents(int32(i)))
		if !d.qualifies(dc, n.Complexity) {
			continue
		}

		reason, suggestion := d.classify(dc, n.Complexity)
		found = append(found, Bottleneck{
			TaskID:         n.ID,
			Title:          n.Title,
			DependentCount: dc,
			Complexity:     n.Complexity,
			Severity:       float64(dc)*0.6 + float64(n.Complexity)*0.4,
			Reason:         reason,
			Suggestion:     suggestion,
			ImpactCount:    g.ImpactCount(int32(i)),
		})
	}

	sort.Slice(found, func(a, b int) bool {
		if found[a].Severity != found[b].Severity {
			return found[a].Severity > found[b].Severity
		}
		return found[a].TaskID < found[b].TaskID
	})

	return found, nil
}

// Close releases detector resources.
func (d *Detector) Close() {}

// qualifies reports whether a node crosses any bottleneck threshold.
func (d *Detector) qualifies(dependents, complexity int) bool {
	t := d.thresholds
	if dependents >= t.MinDependents {
		return true
	}
	if complexity >= t.HighComplexity {
		return true
	}
	return dependents >= t.ComboDependents && complexity >= t.ComboComplexity
}

// classify picks the reason and suggestion for a qualifying node based
// on which thresholds fired.
func (d *Detector) classify(dependents, complexity int) (string, string) {
	t := d.thresholds
	manyDeps := dependents >= t.MinDependents
	highCx := complexity >= t.HighComplexity

	switch {
	case manyDeps && highCx:
		return ReasonCritical, "split this task and start it before its dependents stack up"
	case manyDeps:
		return ReasonDependents, "prioritize this task to unblock the work waiting on it"
	case highCx:
		return ReasonComplexity, "break this task into smaller subtasks"
	default:
		return ReasonCombined, "schedule this task early and keep its scope in check"
	}
}

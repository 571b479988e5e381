package analyzer

import (
	"context"

	"github.com/mgrette/vantage/pkg/analyzer/graph"
)

// GraphAnalyzer is the interface that all graph-based analyzers implement.
// It provides a standard way to analyze a built task graph with context
// support.
type GraphAnalyzer[T any] interface {
	// Analyze processes a task graph and returns the analysis result.
	// The context can be used for cancellation and progress reporting.
	Analyze(ctx context.Context, g *graph.Graph) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}

package insight

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgrette/vantage/pkg/analyzer/bottleneck"
	"github.com/mgrette/vantage/pkg/analyzer/critpath"
	"github.com/mgrette/vantage/pkg/analyzer/cycles"
	"github.com/mgrette/vantage/pkg/analyzer/graph"
	"github.com/mgrette/vantage/pkg/analyzer/readiness"
	"github.com/mgrette/vantage/pkg/task"
)

func buildGraph(tasks ...task.Task) *graph.Graph {
	return graph.NewBuilder().Build(&task.Collection{Tasks: tasks})
}

func readyIDs(scores []readiness.Score) []string {
	ids := make([]string, 0, len(scores))
	for _, sc := range scores {
		ids = append(ids, sc.TaskID)
	}
	return ids
}

func TestFindReadyTasks(t *testing.T) {
	g := buildGraph(
		task.Task{ID: "a", Status: task.StatusDone},
		task.Task{ID: "b", Status: task.StatusPending, Dependencies: []string{"a"}},
		task.Task{ID: "c", Status: task.StatusPending, Dependencies: []string{"b"}},
		task.Task{ID: "d", Status: task.StatusInProgress, Dependencies: []string{"a"}},
		task.Task{ID: "e", Status: task.StatusCancelled},
		task.Task{ID: "f", Status: task.StatusPending},
		task.Task{ID: "g", Status: task.StatusReview, Dependencies: []string{"a"}},
	)

	scores, err := readiness.New().Analyze(context.Background(), g)
	require.NoError(t, err)

	ready := New().FindReadyTasks(g, scores)
	ids := readyIDs(ready)

	// b, f and g are startable: every direct prerequisite is done and
	// none of them is finished or already underway.
	assert.ElementsMatch(t, []string{"b", "f", "g"}, ids)
}

func TestFindReadyTasksSorting(t *testing.T) {
	g := buildGraph(
		task.Task{ID: "x", Status: task.StatusPending},
		task.Task{ID: "y", Status: task.StatusPending},
		task.Task{ID: "z", Status: task.StatusPending},
	)

	scores := []readiness.Score{
		{TaskID: "x", Total: 0.5, Dependency: 1.0},
		{TaskID: "y", Total: 0.9, Dependency: 1.0},
		{TaskID: "z", Total: 0.5, Dependency: 1.0},
	}

	ready := New().FindReadyTasks(g, scores)

	require.Len(t, ready, 3)
	assert.Equal(t, "y", ready[0].TaskID)
	// Equal totals fall back to ascending id.
	assert.Equal(t, "x", ready[1].TaskID)
	assert.Equal(t, "z", ready[2].TaskID)
}

func TestFindReadyTasksShortScores(t *testing.T) {
	g := buildGraph(
		task.Task{ID: "a", Status: task.StatusPending},
		task.Task{ID: "b", Status: task.StatusPending},
	)

	ready := New().FindReadyTasks(g, []readiness.Score{{TaskID: "a", Dependency: 1.0}})

	require.Len(t, ready, 1)
	assert.Equal(t, "a", ready[0].TaskID)
}

func TestInsights(t *testing.T) {
	in := Input{
		Summary: &graph.Summary{
			TotalNodes:        10,
			DoneCount:         5,
			CompletionPercent: 50,
		},
		Path:        &critpath.Path{Length: 3, EstimatedDays: 4},
		Bottlenecks: []bottleneck.Bottleneck{{TaskID: "1"}, {TaskID: "2"}},
		Cycles:      []cycles.Cycle{{Length: 2}},
		ReadyCount:  1,
	}

	out := New().Insights(in)

	assert.Equal(t, []string{
		"50% of tasks are complete (5 of 10)",
		"critical path spans 3 tasks, roughly 4 days of work",
		"2 bottlenecks are slowing downstream work",
		"1 task is ready to pick up now",
		"1 circular dependency chain needs to be broken",
	}, out)
}

func TestInsightsEmpty(t *testing.T) {
	out := New().Insights(Input{Summary: &graph.Summary{}, Path: &critpath.Path{}})
	assert.Empty(t, out)
}

func TestInsightsConnector(t *testing.T) {
	g := buildGraph(
		task.Task{ID: "a", Status: task.StatusDone},
		task.Task{ID: "b", Status: task.StatusPending, Dependencies: []string{"a"}},
		task.Task{ID: "c", Status: task.StatusPending, Dependencies: []string{"b"}},
		task.Task{ID: "d", Status: task.StatusPending, Dependencies: []string{"b"}},
	)

	out := New().Insights(Input{
		Graph:   g,
		Summary: graph.CalculateSummary(g),
		Metrics: graph.CalculateMetrics(g),
	})

	// Both c and d funnel through b, so b carries the highest rank
	// among the unfinished tasks.
	require.NotEmpty(t, out)
	assert.Equal(t, "task b sits on the most dependency paths; completing it frees the most downstream work", out[len(out)-1])
}

func TestInsightsConnectorSkippedWithoutEdges(t *testing.T) {
	g := buildGraph(
		task.Task{ID: "a", Status: task.StatusPending},
		task.Task{ID: "b", Status: task.StatusPending},
	)

	out := New().Insights(Input{
		Graph:   g,
		Summary: graph.CalculateSummary(g),
		Metrics: graph.CalculateMetrics(g),
	})

	// Without dependency edges rank is uniform and naming a connector
	// would be noise. Only the completion line applies here.
	for _, line := range out {
		assert.NotContains(t, line, "dependency paths")
	}
}

func TestRecommendations(t *testing.T) {
	ready := []readiness.Score{
		{TaskID: "7", Title: "Wire auth", Total: 0.92},
		{TaskID: "3", Title: "Add docs", Total: 0.8},
		{TaskID: "9", Title: "Tune cache", Total: 0.75},
		{TaskID: "4", Title: "Cleanup", Total: 0.71},
		{TaskID: "5", Title: "Low value", Total: 0.5},
	}
	bns := []bottleneck.Bottleneck{
		{TaskID: "2", Reason: bottleneck.ReasonDependents, Suggestion: "unblock it"},
	}

	recs := New().Recommendations(ready, bns, nil)
	require.Len(t, recs, 3)

	next := recs[0]
	assert.Equal(t, TypeNextTask, next.Type)
	assert.Equal(t, []string{"7"}, next.TaskIDs)
	assert.Contains(t, next.Description, "0.92")

	bn := recs[1]
	assert.Equal(t, TypeResolveBottleneck, bn.Type)
	assert.Equal(t, []string{"2"}, bn.TaskIDs)
	assert.Contains(t, bn.Description, "unblock it")

	par := recs[2]
	assert.Equal(t, TypeParallelWork, par.Type)
	// Top three above the 0.7 threshold; 0.5 never qualifies.
	assert.Equal(t, []string{"7", "3", "9"}, par.TaskIDs)
}

func TestRecommendationsParallelNeedsTwo(t *testing.T) {
	ready := []readiness.Score{
		{TaskID: "1", Total: 0.9},
		{TaskID: "2", Total: 0.3},
	}

	recs := New().Recommendations(ready, nil, nil)

	require.Len(t, recs, 1)
	assert.Equal(t, TypeNextTask, recs[0].Type)
}

func TestRecommendationsBreakCycle(t *testing.T) {
	cycs := []cycles.Cycle{
		{Nodes: []cycles.Ref{{ID: "a"}, {ID: "b"}, {ID: "c"}}, Length: 3},
		{Nodes: []cycles.Ref{{ID: "z"}}, Length: 1},
	}

	recs := New().Recommendations(nil, nil, cycs)

	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, TypeBreakCycle, rec.Type)
	assert.Equal(t, "high", rec.Priority)
	// Only the first cycle is recommended; the rest show up in the
	// cycle report itself.
	assert.Equal(t, []string{"a", "b", "c"}, rec.TaskIDs)
	assert.Contains(t, rec.Description, "3 tasks")
}

func TestRecommendationsCustomThreshold(t *testing.T) {
	gen := New(WithReadyThreshold(0.4), WithParallelLimit(2))
	ready := []readiness.Score{
		{TaskID: "1", Total: 0.9},
		{TaskID: "2", Total: 0.6},
		{TaskID: "3", Total: 0.5},
	}

	recs := gen.Recommendations(ready, nil, nil)

	require.Len(t, recs, 2)
	par := recs[1]
	assert.Equal(t, TypeParallelWork, par.Type)
	assert.Equal(t, []string{"1", "2"}, par.TaskIDs)
}

func TestRecommendationsEmpty(t *testing.T) {
	assert.Empty(t, New().Recommendations(nil, nil, nil))
}

package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgrette/vantage/pkg/analyzer"
	"github.com/mgrette/vantage/pkg/analyzer/readiness"
	"github.com/mgrette/vantage/pkg/complexity"
	"github.com/mgrette/vantage/pkg/config"
	"github.com/mgrette/vantage/pkg/task"
)

func newEngine(opts ...Option) *Engine {
	return New(append([]Option{WithConfig(config.DefaultConfig())}, opts...)...)
}

func flatCollection(tasks ...task.Task) *task.Collection {
	return &task.Collection{Tasks: tasks}
}

// pipelineCollection is a small project with one done task, one ready
// task that three others wait on, and no cycles.
func pipelineCollection() *task.Collection {
	return flatCollection(
		task.Task{ID: "1", Title: "Schema", Status: task.StatusDone, Complexity: 2},
		task.Task{ID: "2", Title: "API", Status: task.StatusPending, Priority: task.PriorityHigh, Dependencies: []string{"1"}, Complexity: 3},
		task.Task{ID: "3", Title: "UI", Status: task.StatusPending, Dependencies: []string{"2"}, Complexity: 7},
		task.Task{ID: "4", Title: "Docs", Status: task.StatusPending, Dependencies: []string{"2"}, Complexity: 1},
		task.Task{ID: "5", Title: "QA", Status: task.StatusPending, Dependencies: []string{"2"}, Complexity: 1},
	)
}

func scoreOf(t *testing.T, scores []readiness.Score, id string) readiness.Score {
	t.Helper()
	for _, sc := range scores {
		if sc.TaskID == id {
			return sc
		}
	}
	t.Fatalf("no score for task %q", id)
	return readiness.Score{}
}

func readyIDs(res *AnalysisResult) []string {
	ids := make([]string, 0, len(res.ReadyTasks))
	for _, sc := range res.ReadyTasks {
		ids = append(ids, sc.TaskID)
	}
	return ids
}

func TestNewDefaults(t *testing.T) {
	e := newEngine()
	require.NotNil(t, e)
	assert.Equal(t, readiness.DefaultWeights(), e.Weights())
}

func TestAnalyzePipeline(t *testing.T) {
	e := newEngine()
	res, err := e.Analyze(context.Background(), pipelineCollection(), AnalyzeOptions{})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Empty(t, res.Error)
	assert.False(t, res.GeneratedAt.IsZero())

	require.NotNil(t, res.Summary)
	assert.Equal(t, 5, res.Summary.TotalNodes)
	assert.Equal(t, 4, res.Summary.DependencyEdges)
	assert.Equal(t, 1, res.Summary.DoneCount)
	assert.InDelta(t, 20.0, res.Summary.CompletionPercent, 1e-9)
	assert.False(t, res.Summary.IsCyclic)

	require.Len(t, res.Scores, 5)
	assert.Equal(t, 1.0, scoreOf(t, res.Scores, "2").Dependency)

	assert.Equal(t, []string{"2"}, readyIDs(res))

	require.NotNil(t, res.CriticalPath)
	require.Len(t, res.CriticalPath.Nodes, 3)
	assert.Equal(t, "1", res.CriticalPath.Nodes[0].ID)
	assert.Equal(t, "2", res.CriticalPath.Nodes[1].ID)
	assert.Equal(t, "3", res.CriticalPath.Nodes[2].ID)
	assert.Equal(t, 12, res.CriticalPath.TotalComplexity)
	assert.Equal(t, 6, res.CriticalPath.EstimatedDays)

	require.Len(t, res.Bottlenecks, 1)
	assert.Equal(t, "2", res.Bottlenecks[0].TaskID)
	assert.Equal(t, 3, res.Bottlenecks[0].DependentCount)

	assert.Empty(t, res.Cycles)
	require.Len(t, res.Insights, 5)
	assert.Contains(t, res.Insights[4], "task 2 sits on the most dependency paths")

	require.Len(t, res.Recommendations, 2)
	assert.Equal(t, "next-task", res.Recommendations[0].Type)
	assert.Equal(t, "resolve-bottleneck", res.Recommendations[1].Type)

	require.NotNil(t, res.Metrics)
	assert.Len(t, res.Metrics.NodeMetrics, 5)
}

func TestAnalyzeStatusFlip(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	before := flatCollection(
		task.Task{ID: "1", Status: task.StatusPending},
		task.Task{ID: "2", Status: task.StatusPending, Dependencies: []string{"1"}},
	)
	res, err := e.Analyze(ctx, before, AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, scoreOf(t, res.Scores, "2").Dependency)
	assert.Equal(t, []string{"1"}, readyIDs(res))

	after := flatCollection(
		task.Task{ID: "1", Status: task.StatusDone},
		task.Task{ID: "2", Status: task.StatusPending, Dependencies: []string{"1"}},
	)
	res, err = e.Analyze(ctx, after, AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, scoreOf(t, res.Scores, "2").Dependency)
	assert.Equal(t, []string{"2"}, readyIDs(res))
}

func TestAnalyzeUnrecognizedCollection(t *testing.T) {
	e := newEngine()

	res, err := e.Analyze(context.Background(), &task.Collection{}, AnalyzeOptions{})
	require.ErrorIs(t, err, ErrUnrecognizedCollection)
	require.NotNil(t, res)
	assert.Equal(t, ErrUnrecognizedCollection.Error(), res.Error)
	assert.False(t, res.GeneratedAt.IsZero())
	assert.Nil(t, res.Summary)
	assert.Empty(t, res.Scores)
}

func TestAnalyzeNilCollection(t *testing.T) {
	e := newEngine()

	res, err := e.Analyze(context.Background(), nil, AnalyzeOptions{})
	require.ErrorIs(t, err, ErrUnrecognizedCollection)
	assert.NotEmpty(t, res.Error)
}

func TestAnalyzeEmptyTaskList(t *testing.T) {
	e := newEngine()

	// A present-but-empty task list is a recognized shape.
	res, err := e.Analyze(context.Background(), &task.Collection{Tasks: []task.Task{}}, AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Summary.TotalNodes)
	assert.Empty(t, res.CriticalPath.Nodes)
	assert.Empty(t, res.ReadyTasks)
}

func TestAnalyzeCacheHit(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	res1, err := e.Analyze(ctx, pipelineCollection(), AnalyzeOptions{})
	require.NoError(t, err)
	res2, err := e.Analyze(ctx, pipelineCollection(), AnalyzeOptions{})
	require.NoError(t, err)

	assert.Same(t, res1, res2)

	stats := e.CacheStats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestAnalyzeSkipCache(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	res1, err := e.Analyze(ctx, pipelineCollection(), AnalyzeOptions{})
	require.NoError(t, err)
	res2, err := e.Analyze(ctx, pipelineCollection(), AnalyzeOptions{SkipCache: true})
	require.NoError(t, err)

	assert.NotSame(t, res1, res2)
	assert.Equal(t, res1.Summary, res2.Summary)
	assert.Equal(t, res1.Scores, res2.Scores)

	stats := e.CacheStats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestAnalyzeIdempotence(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	res1, err := e.Analyze(ctx, pipelineCollection(), AnalyzeOptions{})
	require.NoError(t, err)

	e.ClearCache()

	res2, err := e.Analyze(ctx, pipelineCollection(), AnalyzeOptions{})
	require.NoError(t, err)

	require.NotSame(t, res1, res2)
	assert.Equal(t, res1.Summary, res2.Summary)
	assert.Equal(t, res1.Scores, res2.Scores)
	assert.Equal(t, res1.ReadyTasks, res2.ReadyTasks)
	assert.Equal(t, res1.CriticalPath, res2.CriticalPath)
	assert.Equal(t, res1.Bottlenecks, res2.Bottlenecks)
	assert.Equal(t, res1.Cycles, res2.Cycles)
	assert.Equal(t, res1.Insights, res2.Insights)
	assert.Equal(t, res1.Recommendations, res2.Recommendations)
	assert.Len(t, res2.Metrics.NodeMetrics, len(res1.Metrics.NodeMetrics))
}

func TestAnalyzeWeightsOverride(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	c := flatCollection(task.Task{ID: "1", Status: task.StatusPending, Complexity: 9})

	res, err := e.Analyze(ctx, c, AnalyzeOptions{
		Weights: &readiness.Weights{Dependency: 1.0},
	})
	require.NoError(t, err)

	// Only the dependency factor carries weight, and the task has no
	// dependencies.
	assert.Equal(t, 1.0, scoreOf(t, res.Scores, "1").Total)

	// The override is part of the cache key.
	_, err = e.Analyze(ctx, c, AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, e.CacheStats().Entries)
}

func TestAnalyzeComplexityProvider(t *testing.T) {
	e := newEngine(WithComplexityProvider(complexity.StaticProvider{"1": 9}))

	res, err := e.Analyze(context.Background(), flatCollection(
		task.Task{ID: "1", Status: task.StatusPending},
	), AnalyzeOptions{})
	require.NoError(t, err)

	assert.InDelta(t, 1.0/9.0, scoreOf(t, res.Scores, "1").Complexity, 1e-9)
}

type failingProvider struct{}

func (failingProvider) Load(context.Context) (map[string]int, error) {
	return nil, errors.New("report unavailable")
}

func TestAnalyzeProviderFailureDegrades(t *testing.T) {
	e := newEngine(WithComplexityProvider(failingProvider{}))

	res, err := e.Analyze(context.Background(), flatCollection(
		task.Task{ID: "1", Status: task.StatusPending},
	), AnalyzeOptions{})
	require.NoError(t, err)

	// Default complexity 5 applies when the provider fails.
	assert.InDelta(t, 5.0/9.0, scoreOf(t, res.Scores, "1").Complexity, 1e-9)
	assert.Empty(t, res.Error)
}

func TestAnalyzeCancelledContext(t *testing.T) {
	e := newEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Analyze(ctx, pipelineCollection(), AnalyzeOptions{})
	require.ErrorIs(t, err, context.Canceled)
	assert.NotEmpty(t, res.Error)
}

func TestObserverEvents(t *testing.T) {
	var events []Event
	e := newEngine(WithObserver(func(ev Event) {
		events = append(events, ev)
	}))
	ctx := context.Background()

	res, err := e.Analyze(ctx, pipelineCollection(), AnalyzeOptions{})
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, EventAnalysisComplete, events[0].Type)
	assert.Same(t, res, events[0].Result)
	assert.False(t, events[0].Timestamp.IsZero())

	// Cache hits notify too.
	_, err = e.Analyze(ctx, pipelineCollection(), AnalyzeOptions{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventAnalysisComplete, events[1].Type)
	assert.Same(t, res, events[1].Result)

	// So do failure results.
	_, err = e.Analyze(ctx, nil, AnalyzeOptions{})
	require.Error(t, err)
	require.Len(t, events, 3)
	assert.NotEmpty(t, events[2].Result.Error)
}

func TestUpdateWeights(t *testing.T) {
	var events []Event
	e := newEngine(WithObserver(func(ev Event) {
		events = append(events, ev)
	}))

	w := readiness.Weights{Dependency: 1.0}
	e.UpdateWeights(w)

	assert.Equal(t, w, e.Weights())
	require.Len(t, events, 1)
	assert.Equal(t, EventConfigUpdated, events[0].Type)
	require.NotNil(t, events[0].Weights)
	assert.Equal(t, w, *events[0].Weights)

	// Subsequent analyses score with the new weights.
	res, err := e.Analyze(context.Background(), flatCollection(
		task.Task{ID: "1", Status: task.StatusPending, Complexity: 9},
	), AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, scoreOf(t, res.Scores, "1").Total)
}

func TestClearCache(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	_, err := e.Analyze(ctx, pipelineCollection(), AnalyzeOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, e.CacheStats().Entries)

	e.ClearCache()

	stats := e.CacheStats()
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(0), stats.Misses)
}

func TestWithCacheDisabled(t *testing.T) {
	e := newEngine(WithCacheDisabled())
	ctx := context.Background()

	res1, err := e.Analyze(ctx, pipelineCollection(), AnalyzeOptions{})
	require.NoError(t, err)
	res2, err := e.Analyze(ctx, pipelineCollection(), AnalyzeOptions{})
	require.NoError(t, err)

	assert.NotSame(t, res1, res2)

	stats := e.CacheStats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(0), stats.Misses)
	assert.Equal(t, 0, stats.Entries)
}

func TestAnalyzeTrackerStages(t *testing.T) {
	var mu sync.Mutex
	var stages []string
	tracker := analyzer.NewTracker(func(_, _ int, stage string) {
		mu.Lock()
		stages = append(stages, stage)
		mu.Unlock()
	})
	ctx := analyzer.WithTracker(context.Background(), tracker)

	e := newEngine()
	_, err := e.Analyze(ctx, flatCollection(
		task.Task{ID: "1", Status: task.StatusPending},
		task.Task{ID: "2", Status: task.StatusPending},
	), AnalyzeOptions{})
	require.NoError(t, err)

	// Five pipeline stages plus one tick per scored node.
	assert.Equal(t, 7, tracker.Total())
	assert.Equal(t, tracker.Total(), tracker.Current())
	assert.Contains(t, stages, "build graph")
	assert.Contains(t, stages, "score readiness")
	assert.Contains(t, stages, "analyze structure")
	assert.Contains(t, stages, "generate insights")
	assert.Contains(t, stages, "store result")
}

func TestWithWorkers(t *testing.T) {
	e := newEngine(WithWorkers(1))

	res, err := e.Analyze(context.Background(), pipelineCollection(), AnalyzeOptions{})
	require.NoError(t, err)
	assert.Len(t, res.Scores, 5)
}

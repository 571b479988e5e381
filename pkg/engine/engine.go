// Package engine orchestrates the analysis pipeline: graph build,
// readiness scoring, structural analysis, insight generation, and the
// digest-keyed result cache. Engines are freely instantiable values;
// any caching state is owned by the instance, never process-wide.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/mgrette/vantage/internal/cache"
	"github.com/mgrette/vantage/pkg/analyzer"
	"github.com/mgrette/vantage/pkg/analyzer/bottleneck"
	"github.com/mgrette/vantage/pkg/analyzer/critpath"
	"github.com/mgrette/vantage/pkg/analyzer/cycles"
	"github.com/mgrette/vantage/pkg/analyzer/graph"
	"github.com/mgrette/vantage/pkg/analyzer/insight"
	"github.com/mgrette/vantage/pkg/analyzer/readiness"
	"github.com/mgrette/vantage/pkg/complexity"
	"github.com/mgrette/vantage/pkg/config"
	"github.com/mgrette/vantage/pkg/task"
)

// ErrUnrecognizedCollection indicates input in neither the grouped nor
// the flat collection shape.
var ErrUnrecognizedCollection = errors.New("task collection is neither grouped nor flat")

// Engine runs analyses and owns the result cache. Methods are safe for
// concurrent use; the engine serializes access to its shared state.
type Engine struct {
	mu       sync.Mutex
	config   *config.Config
	provider complexity.Provider
	observer Observer
	cache    *cache.Cache[*AnalysisResult]

	workers       int
	cacheDisabled bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) {
		e.config = cfg
	}
}

// WithComplexityProvider sets the source of per-task complexity
// estimates. Without one, every task without an explicit complexity
// falls back to the configured default.
func WithComplexityProvider(p complexity.Provider) Option {
	return func(e *Engine) {
		e.provider = p
	}
}

// WithObserver sets the event callback.
func WithObserver(fn Observer) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// WithCacheDisabled turns the result cache off regardless of config.
func WithCacheDisabled() Option {
	return func(e *Engine) {
		e.cacheDisabled = true
	}
}

// WithWorkers overrides the configured scoring worker count.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// New creates a new engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		config: config.LoadOrDefault(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cache = cache.New[*AnalysisResult](e.config.Cache.Enabled && !e.cacheDisabled)
	return e
}

// Close releases resources. The engine holds nothing beyond its
// in-memory cache; Close exists for symmetry with the analyzers.
func (e *Engine) Close() {}

// Analyze runs the full pipeline on a task collection. Failures are
// data: a fatal fault produces a result with Error and Elapsed set,
// alongside the returned error. Per-node scoring faults never abort the
// batch; they degrade the affected score entries instead.
func (e *Engine) Analyze(ctx context.Context, c *task.Collection, opts AnalyzeOptions) (*AnalysisResult, error) {
	start := time.Now()

	if c == nil || !c.Recognized() {
		return e.failure(start, ErrUnrecognizedCollection)
	}

	weights := e.effectiveWeights(opts.Weights)

	// The complexity mapping is loaded once per call, before anything
	// else: it is part of the cache key, and a load failure degrades to
	// the default score rather than failing the analysis.
	cxScores := e.loadComplexity(ctx)

	digest, err := e.digest(c, weights, cxScores)
	if err != nil {
		return e.failure(start, fmt.Errorf("computing input digest: %w", err))
	}

	if !opts.SkipCache {
		e.mu.Lock()
		cached, ok := e.cache.Get(digest)
		e.mu.Unlock()
		if ok {
			e.notify(Event{Type: EventAnalysisComplete, Result: cached, Timestamp: time.Now().UTC()})
			return cached, nil
		}
	}

	tracker := analyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Add(5)
	}
	tick := func(stage string) {
		if tracker != nil {
			tracker.Tick(stage)
		}
	}

	builderOpts := []graph.Option{graph.WithDefaultComplexity(e.config.Analysis.DefaultComplexity)}
	if len(cxScores) > 0 {
		builderOpts = append(builderOpts, graph.WithComplexity(cxScores))
	}
	g := graph.NewBuilder(builderOpts...).Build(c)
	tick("build graph")

	scorer := readiness.New(readiness.WithWeights(weights), readiness.WithWorkers(e.workerCount()))
	defer scorer.Close()

	scores, err := scorer.Analyze(ctx, g)
	if err != nil {
		return e.failure(start, err)
	}
	tick("score readiness")

	var (
		path        *critpath.Path
		pathErr     error
		bottlenecks []bottleneck.Bottleneck
		bnErr       error
		cycleList   []cycles.Cycle
		cycErr      error
		summary     *graph.Summary
		metrics     *graph.Metrics
	)

	wg := conc.NewWaitGroup()
	wg.Go(func() {
		cp := critpath.New()
		defer cp.Close()
		path, pathErr = cp.Analyze(ctx, g)
	})
	wg.Go(func() {
		det := bottleneck.New(bottleneck.WithThresholds(e.config.Thresholds.Bottleneck))
		defer det.Close()
		bottlenecks, bnErr = det.Analyze(ctx, g)
	})
	wg.Go(func() {
		det := cycles.New()
		defer det.Close()
		cycleList, cycErr = det.Analyze(ctx, g)
	})
	wg.Go(func() {
		summary = graph.CalculateSummary(g)
		metrics = graph.CalculateMetrics(g)
	})
	wg.Wait()

	if err := firstError(pathErr, bnErr, cycErr); err != nil {
		return e.failure(start, err)
	}
	tick("analyze structure")

	gen := insight.New(
		insight.WithReadyThreshold(e.config.Thresholds.ReadyScore),
		insight.WithParallelLimit(e.config.Thresholds.ParallelLimit),
	)
	ready := gen.FindReadyTasks(g, scores)
	insights := gen.Insights(insight.Input{
		Graph:       g,
		Summary:     summary,
		Metrics:     metrics,
		Path:        path,
		Bottlenecks: bottlenecks,
		Cycles:      cycleList,
		ReadyCount:  len(ready),
	})
	recommendations := gen.Recommendations(ready, bottlenecks, cycleList)
	tick("generate insights")

	result := &AnalysisResult{
		GeneratedAt:     time.Now().UTC(),
		Elapsed:         time.Since(start),
		Summary:         summary,
		Metrics:         metrics,
		Scores:          scores,
		ReadyTasks:      ready,
		CriticalPath:    path,
		Bottlenecks:     bottlenecks,
		Cycles:          cycleList,
		Insights:        insights,
		Recommendations: recommendations,
	}

	e.mu.Lock()
	e.cache.Set(digest, result)
	e.mu.Unlock()
	tick("store result")

	e.notify(Event{Type: EventAnalysisComplete, Result: result, Timestamp: time.Now().UTC()})
	return result, nil
}

// UpdateWeights replaces the configured scoring weights and notifies
// the observer. Results cached under the old weights stay stored but
// are keyed by the old digests, so new calls will not hit them.
func (e *Engine) UpdateWeights(w readiness.Weights) {
	e.mu.Lock()
	e.config.Weights = w
	e.mu.Unlock()

	e.notify(Event{Type: EventConfigUpdated, Weights: &w, Timestamp: time.Now().UTC()})
}

// Weights returns the currently configured scoring weights.
func (e *Engine) Weights() readiness.Weights {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config.Weights
}

// ClearCache drops every cached result and resets the counters.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	e.cache.Clear()
	e.mu.Unlock()
}

// CacheStats reports cache effectiveness counters.
func (e *Engine) CacheStats() cache.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.GetStats()
}

// digestInput is the canonical representation hashed into the cache
// key. Map keys are sorted by the JSON encoder, so byte-identical
// inputs produce identical digests.
type digestInput struct {
	Collection        *task.Collection       `json:"collection"`
	Weights           readiness.Weights      `json:"weights"`
	Thresholds        config.ThresholdConfig `json:"thresholds"`
	DefaultComplexity int                    `json:"default_complexity"`
	Complexity        map[string]int         `json:"complexity,omitempty"`
}

func (e *Engine) digest(c *task.Collection, w readiness.Weights, cxScores map[string]int) (string, error) {
	payload, err := json.Marshal(digestInput{
		Collection:        c,
		Weights:           w,
		Thresholds:        e.config.Thresholds,
		DefaultComplexity: e.config.Analysis.DefaultComplexity,
		Complexity:        cxScores,
	})
	if err != nil {
		return "", err
	}
	return cache.HashBytes(payload), nil
}

// loadComplexity resolves the optional complexity mapping. A missing or
// failing provider is never an error; scoring falls back to the default.
func (e *Engine) loadComplexity(ctx context.Context) map[string]int {
	if e.provider == nil {
		return nil
	}
	scores, err := e.provider.Load(ctx)
	if err != nil {
		return nil
	}
	return scores
}

func (e *Engine) effectiveWeights(override *readiness.Weights) readiness.Weights {
	if override != nil {
		return *override
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config.Weights
}

func (e *Engine) workerCount() int {
	if e.workers > 0 {
		return e.workers
	}
	return e.config.Analysis.Workers
}

func (e *Engine) failure(start time.Time, err error) (*AnalysisResult, error) {
	result := &AnalysisResult{
		GeneratedAt: time.Now().UTC(),
		Elapsed:     time.Since(start),
		Error:       err.Error(),
	}
	e.notify(Event{Type: EventAnalysisComplete, Result: result, Timestamp: time.Now().UTC()})
	return result, err
}

func (e *Engine) notify(ev Event) {
	if e.observer == nil {
		return
	}
	e.observer(ev)
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

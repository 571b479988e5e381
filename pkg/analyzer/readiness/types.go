package readiness

// Weights control how much each factor contributes to the total
// readiness score. A factor with weight zero (or less) is dropped from
// the weighted average entirely.
type Weights struct {
	Dependency float64 `json:"dependency" koanf:"dependency" toon:"dependency"`
	Complexity float64 `json:"complexity" koanf:"complexity" toon:"complexity"`
	Context    float64 `json:"context" koanf:"context" toon:"context"`
	Priority   float64 `json:"priority" koanf:"priority" toon:"priority"`
}

// DefaultWeights returns the standard factor weighting.
func DefaultWeights() Weights {
	return Weights{
		Dependency: 0.8,
		Complexity: 0.6,
		Context:    0.9,
		Priority:   0.7,
	}
}

// Score is the readiness breakdown for a single task. All factors and
// the total live in [0, 1]; higher means more ready to pick up.
type Score struct {
	TaskID     string  `json:"task_id" toon:"task_id"`
	Title      string  `json:"title" toon:"title"`
	Total      float64 `json:"total" toon:"total"`
	Dependency float64 `json:"dependency" toon:"dependency"`
	Complexity float64 `json:"complexity" toon:"complexity"`
	Context    float64 `json:"context" toon:"context"`
	Priority   float64 `json:"priority" toon:"priority"`

	// Reason explains an all-zero score for terminal tasks; Error
	// carries a node-local scoring fault that did not stop the batch.
	Reason string `json:"reason,omitempty" toon:"reason,omitempty"`
	Error  string `json:"error,omitempty" toon:"error,omitempty"`
}

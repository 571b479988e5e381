package bottleneck

// Thresholds control when a task qualifies as a bottleneck.
type Thresholds struct {
	// MinDependents qualifies a task on dependent count alone.
	MinDependents int `json:"min_dependents" koanf:"min_dependents" toon:"min_dependents"`
	// HighComplexity qualifies a task on complexity alone.
	HighComplexity int `json:"high_complexity" koanf:"high_complexity" toon:"high_complexity"`
	// ComboDependents and ComboComplexity qualify a task when both
	// are met at once.
	ComboDependents int `json:"combo_dependents" koanf:"combo_dependents" toon:"combo_dependents"`
	ComboComplexity int `json:"combo_complexity" koanf:"combo_complexity" toon:"combo_complexity"`
}

// DefaultThresholds returns the standard qualification thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinDependents:   3,
		HighComplexity:  8,
		ComboDependents: 2,
		ComboComplexity: 6,
	}
}

// Reasons cover each threshold combination that can fire.
const (
	ReasonCritical   = "heavily depended on and highly complex"
	ReasonDependents = "many tasks depend on this one"
	ReasonComplexity = "high complexity puts dependent work at risk"
	ReasonCombined   = "moderately complex with multiple dependents"
)

// Bottleneck is a task whose position or complexity makes it a
// disproportionate risk to overall progress.
type Bottleneck struct {
	TaskID         string  `json:"task_id" toon:"task_id"`
	Title          string  `json:"title" toon:"title"`
	DependentCount int     `json:"dependent_count" toon:"dependent_count"`
	Complexity     int     `json:"complexity" toon:"complexity"`
	Severity       float64 `json:"severity" toon:"severity"`
	Reason         string  `json:"reason" toon:"reason"`
	Suggestion     string  `json:"suggestion" toon:"suggestion"`

	// ImpactCount is the number of tasks that transitively depend on
	// this one, a wider measure than DependentCount.
	ImpactCount int `json:"impact_count" toon:"impact_count"`
}

package task

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
	StatusDeferred   Status = "deferred"
	StatusBlocked    Status = "blocked"
	StatusReview     Status = "review"
)

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the status marks work that will never be
// picked up again. Unrecognized statuses are not terminal.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// Priority represents the declared importance of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// String returns the string representation.
func (p Priority) String() string {
	return string(p)
}

// Task is a single work item. Subtasks carry the same shape and are
// consumed one level deep; deeper nesting is ignored.
type Task struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title,omitempty" yaml:"title,omitempty"`
	Status       Status   `json:"status,omitempty" yaml:"status,omitempty"`
	Priority     Priority `json:"priority,omitempty" yaml:"priority,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Complexity   int      `json:"complexity,omitempty" yaml:"complexity,omitempty"`
	Subtasks     []Task   `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`
}

// Group is a named namespace holding a task list.
type Group struct {
	Tasks []Task `json:"tasks" yaml:"tasks"`
}

// Collection is the raw input to an analysis: either a namespaced form
// (Groups) or a flat form (Tasks). Ids must be unique within a single
// analysis run; callers are responsible for disambiguating ids that
// collide across groups.
type Collection struct {
	Groups map[string]Group `json:"groups,omitempty" yaml:"groups,omitempty"`
	Tasks  []Task           `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

// Recognized reports whether the collection carries one of the two
// accepted shapes. A present-but-empty task list is recognized; a
// zero-value collection is not.
func (c Collection) Recognized() bool {
	return c.Groups != nil || c.Tasks != nil
}

// Count returns the number of tasks across both forms, subtasks excluded.
func (c Collection) Count() int {
	n := len(c.Tasks)
	for _, g := range c.Groups {
		n += len(g.Tasks)
	}
	return n
}

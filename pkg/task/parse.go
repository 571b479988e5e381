package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCollection marks input that is not a recognized task-collection
// shape. It is the analysis-fatal tier: the caller gets a failure result,
// never a panic.
var ErrInvalidCollection = errors.New("task: invalid collection")

// rawTask mirrors Task but accepts numeric or string ids, matching the
// leniency contract for partially-specified input.
type rawTask struct {
	ID           any       `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Status       Status    `json:"status" yaml:"status"`
	Priority     Priority  `json:"priority" yaml:"priority"`
	Dependencies []any     `json:"dependencies" yaml:"dependencies"`
	Complexity   int       `json:"complexity" yaml:"complexity"`
	Subtasks     []rawTask `json:"subtasks" yaml:"subtasks"`
}

type rawGroup struct {
	Tasks []rawTask `json:"tasks" yaml:"tasks"`
}

type rawCollection struct {
	Groups map[string]rawGroup `json:"groups" yaml:"groups"`
	Tasks  []rawTask           `json:"tasks" yaml:"tasks"`
}

// coerceID renders a decoded id value as a string. JSON numbers arrive as
// float64, YAML numbers as int.
func coerceID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case json.Number:
		return id.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", id)
	}
}

func (r rawTask) toTask() Task {
	t := Task{
		ID:         coerceID(r.ID),
		Title:      r.Title,
		Status:     r.Status,
		Priority:   r.Priority,
		Complexity: r.Complexity,
	}
	if len(r.Dependencies) > 0 {
		t.Dependencies = make([]string, 0, len(r.Dependencies))
		for _, d := range r.Dependencies {
			t.Dependencies = append(t.Dependencies, coerceID(d))
		}
	}
	if len(r.Subtasks) > 0 {
		t.Subtasks = make([]Task, 0, len(r.Subtasks))
		for _, s := range r.Subtasks {
			t.Subtasks = append(t.Subtasks, s.toTask())
		}
	}
	return t
}

func (r rawCollection) toCollection() Collection {
	var c Collection
	if r.Groups != nil {
		c.Groups = make(map[string]Group, len(r.Groups))
		for name, g := range r.Groups {
			tasks := make([]Task, 0, len(g.Tasks))
			for _, t := range g.Tasks {
				tasks = append(tasks, t.toTask())
			}
			c.Groups[name] = Group{Tasks: tasks}
		}
	}
	if r.Tasks != nil {
		c.Tasks = make([]Task, 0, len(r.Tasks))
		for _, t := range r.Tasks {
			c.Tasks = append(c.Tasks, t.toTask())
		}
	}
	return c
}

// ParseCollection decodes a JSON task collection. The input is validated
// against the collection schema first; violations wrap ErrInvalidCollection.
func ParseCollection(data []byte) (Collection, error) {
	if err := ValidateJSON(data); err != nil {
		return Collection{}, err
	}

	var raw rawCollection
	if err := json.Unmarshal(data, &raw); err != nil {
		return Collection{}, fmt.Errorf("%w: %v", ErrInvalidCollection, err)
	}
	return raw.toCollection(), nil
}

// ParseCollectionYAML decodes a YAML task collection. YAML input is checked
// structurally rather than against the JSON schema.
func ParseCollectionYAML(data []byte) (Collection, error) {
	var raw rawCollection
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Collection{}, fmt.Errorf("%w: %v", ErrInvalidCollection, err)
	}

	c := raw.toCollection()
	if !c.Recognized() {
		return Collection{}, fmt.Errorf("%w: neither groups nor tasks present", ErrInvalidCollection)
	}
	return c, nil
}

// LoadCollection reads a task collection from a file, choosing the parser
// by extension. Unknown extensions fall back to JSON.
func LoadCollection(path string) (Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Collection{}, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseCollectionYAML(data)
	default:
		return ParseCollection(data)
	}
}

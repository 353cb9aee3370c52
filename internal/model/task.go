package model

// Priority is the display priority of a task.
type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Tag is a named label attachable to a task. Color is optional; the
// canonical color for a name lives in the tag-color registry.
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Task is the central entity. Timestamps are RFC3339 strings; an empty
// string means the field is unset. TimeSpent is whole seconds and never
// decreases while the record exists.
type Task struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Completed    bool     `json:"completed"`
	DueDate      string   `json:"dueDate,omitempty"`
	CompletedAt  string   `json:"completedAt,omitempty"`
	CreatedAt    string   `json:"createdAt"`
	Category     string   `json:"category,omitempty"`
	Priority     Priority `json:"priority"`
	Tags         []Tag    `json:"tags"`
	Description  string   `json:"description,omitempty"`
	TimeSpent    int64    `json:"timeSpent"`
	TimerActive  bool     `json:"timerActive"`
	LastModified string   `json:"lastModified"`
}

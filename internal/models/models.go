package models

import "time"

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	_, ok := ValidPriorities[p]
	return ok
}

// Status is the lifecycle position of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := ValidTaskStatuses[s]
	return ok
}

// Next returns the status the toggle button moves a task to.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusPending
	}
}

// ValidTaskStatuses enumerates the statuses a task can be in.
var ValidTaskStatuses = map[Status]struct{}{
	StatusPending:    {},
	StatusInProgress: {},
	StatusCompleted:  {},
}

// ValidPriorities enumerates the supported priorities.
var ValidPriorities = map[Priority]struct{}{
	PriorityLow:    {},
	PriorityMedium: {},
	PriorityHigh:   {},
}

// Task represents a single unit of work on the board.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	DueDate     time.Time `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	AssignedTo  string    `json:"assignedTo"`
	SharedWith  []string  `json:"sharedWith"`
	Tags        []string  `json:"tags"`
}

// Clone returns a copy of the task that shares no slices with t.
func (t Task) Clone() Task {
	t.SharedWith = append([]string{}, t.SharedWith...)
	t.Tags = append([]string{}, t.Tags...)
	return t
}

// User is the authenticated identity of the session.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

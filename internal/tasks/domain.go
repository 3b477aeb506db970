package tasks

import "time"

// Status enumerates the lifecycle states of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the persisted enum values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      Status    `json:"status"`
	UserID      int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Client-facing messages.
const (
	MsgTitleRequired = "Please provide a title"
	MsgInvalidStatus = "Status must be one of pending, in_progress, done"
	MsgTaskNotFound  = "Task not found"
	MsgNotAuthorized = "Not authorized"
	MsgTaskRemoved   = "Task removed"
)

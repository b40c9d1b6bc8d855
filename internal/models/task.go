package models

import "time"

// TaskStatus tracks a task through its lifecycle.
type TaskStatus string

const (
	TaskStatusOpen      TaskStatus = "open"
	TaskStatusAssigned  TaskStatus = "assigned"
	TaskStatusDone      TaskStatus = "done"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Task is a unit of work posted by one account and optionally assigned to
// another through an accepted application.
type Task struct {
	ID       int64  `json:"id"`
	LocalID  int64  `json:"localId,omitempty"`
	RemoteID string `json:"_id,omitempty"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	OwnerID int64 `json:"ownerId"`
	// AssigneeID is 0 while the task is unassigned.
	AssigneeID int64 `json:"assigneeId,omitempty"`

	Status TaskStatus `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

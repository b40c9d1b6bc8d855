package models

import "time"

// Message is a notification or chat message between two accounts, optionally
// referencing a task.
type Message struct {
	ID       int64  `json:"id"`
	LocalID  int64  `json:"localId,omitempty"`
	RemoteID string `json:"_id,omitempty"`

	SenderID    int64 `json:"senderId"`
	RecipientID int64 `json:"recipientId"`
	// TaskID is 0 for messages not tied to a task.
	TaskID int64 `json:"taskId,omitempty"`

	Body string `json:"body"`
	Read bool   `json:"read"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

package models

import "time"

// ApplicationStatus tracks an application through review.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// Application is a request by one account to take on another account's task.
type Application struct {
	ID       int64  `json:"id"`
	LocalID  int64  `json:"localId,omitempty"`
	RemoteID string `json:"_id,omitempty"`

	TaskID      int64  `json:"taskId"`
	ApplicantID int64  `json:"applicantId"`
	Note        string `json:"note,omitempty"`

	Status ApplicationStatus `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

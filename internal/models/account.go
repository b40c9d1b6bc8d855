package models

import "time"

// Account is a registered marketplace user.
//
// The envelope fields (ID, LocalID, RemoteID) follow the synchronization
// contract: ID is assigned locally at creation, LocalID mirrors it on the
// remote copy once linked, and RemoteID is present only on records
// materialized from the remote store.
type Account struct {
	ID       int64  `json:"id"`
	LocalID  int64  `json:"localId,omitempty"`
	RemoteID string `json:"_id,omitempty"`

	// Username is the unique business key used to sign in.
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	FullName     string `json:"fullName,omitempty"`

	// FreePermitUsed marks whether the account has spent its one free
	// task-posting permit.
	FreePermitUsed bool `json:"freePermitUsed"`
	// Permits is the number of paid posting permits left.
	Permits int `json:"permits"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

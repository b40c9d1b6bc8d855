package models

import "time"

// Session is the signed-in identity singleton persisted in the local store.
type Session struct {
	AccountID int64     `json:"accountId"`
	Username  string    `json:"username"`
	SignedIn  time.Time `json:"signedIn"`
}

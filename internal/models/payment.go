package models

import "time"

// Payment records a completed checkout that bought posting permits.
//
// The checkout flow itself lives outside this repository; it calls the
// payment-recording operation with the gateway-supplied Reference.
type Payment struct {
	ID       int64  `json:"id"`
	LocalID  int64  `json:"localId,omitempty"`
	RemoteID string `json:"_id,omitempty"`

	AccountID int64 `json:"accountId"`
	// Reference is the external payment-gateway identifier.
	Reference string `json:"reference"`
	// Permits is how many posting permits this payment bought.
	Permits     int   `json:"permits"`
	AmountCents int64 `json:"amountCents"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

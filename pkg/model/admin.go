package model

import "time"

// Admin is one entry of the allow-list gating every admin API route.
type Admin struct {
	ID        string    `json:"_id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Email     string    `json:"email" bson:"email" validate:"required,email"`
	CreatedAt time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

// BulkAddResult reports the outcome for a single email of a bulk add.
type BulkAddResult struct {
	Email  string `json:"email"`
	Added  bool   `json:"added"`
	Reason string `json:"reason,omitempty"`
}

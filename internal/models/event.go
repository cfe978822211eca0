package models

import "time"

// Event represents a recorded account activity, such as a sign-in or a PIN recovery.
type Event struct {
	ID        string    `bson:"_id" json:"id"`
	Type      string    `bson:"type" json:"type"`   // e.g., "user.signup", "user.sign_in.fail"
	Level     string    `bson:"level" json:"level"` // e.g., "info", "warn", "error"
	Message   string    `bson:"message" json:"message"`
	UserID    *string   `bson:"user_id,omitempty" json:"userId,omitempty"` // Nil for anonymous activity
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

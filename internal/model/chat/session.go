package chat

import "time"

// Session captures one ongoing therapy conversation. Sessions are keyed by a
// caller-supplied identifier and created on first use.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

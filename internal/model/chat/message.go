package chat

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message persists an individual turn with the analysis signals attached to
// it at processing time.
type Message struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	Emotion    string    `json:"emotion,omitempty"`
	Topic      string    `json:"topic,omitempty"`
	Patterns   []string  `json:"patterns,omitempty"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"createdAt"`
}

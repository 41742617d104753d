package therapy

import (
	"time"

	"github.com/claritylabs/clarity/backend/internal/analysis/emotion"
	"github.com/claritylabs/clarity/backend/internal/analysis/pattern"
	"github.com/claritylabs/clarity/backend/internal/analysis/topic"
	"github.com/claritylabs/clarity/backend/internal/model/chat"
)

// Candidate is one retrieved reference response. Similarity is in [0,1]
// where 1 means identical.
type Candidate struct {
	Content    string            `json:"content"`
	Similarity float64           `json:"similarityScore"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Context aggregates every signal gathered for a single inbound message. It
// is built fresh per message, handed to the generation step once, and then
// discarded.
type Context struct {
	SessionID   string               `json:"sessionId"`
	Timestamp   time.Time            `json:"timestamp"`
	Patterns    []pattern.Detected   `json:"patterns"`
	Emotion     emotion.Profile      `json:"emotion"`
	Topic       topic.Classification `json:"topic"`
	Candidates  []Candidate          `json:"candidates"`
	History     []chat.Message       `json:"history"`
	UserContext map[string]any       `json:"userContext,omitempty"`
}

// Insight surfaces the primary detected pattern to the caller.
type Insight struct {
	Pattern             string  `json:"pattern"`
	Confidence          float64 `json:"confidence"`
	Description         string  `json:"description"`
	TherapeuticApproach string  `json:"therapeuticApproach"`
}

// Response is the structured reply returned for every processed message.
// Absent signals are carried as their documented neutral/empty defaults,
// never omitted silently.
type Response struct {
	Content             string    `json:"content"`
	SessionID           string    `json:"sessionId"`
	Timestamp           time.Time `json:"timestamp"`
	ConfidenceScore     float64   `json:"confidenceScore"`
	Insight             *Insight  `json:"psychologicalInsight,omitempty"`
	EmotionalState      string    `json:"emotionalState"`
	TopicClassification string    `json:"topicClassification"`
	Suggestions         []string  `json:"suggestions"`
}

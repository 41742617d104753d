package ai

import (
	"fmt"
	"strings"

	"github.com/claritylabs/clarity/backend/internal/model/therapy"
)

const baseInstructions = `You are Clarity, an AI-powered therapy assistant. Your role is to provide empathetic, psychologically-informed support while maintaining professional boundaries.

Core Principles:
- Be warm, empathetic, and non-judgmental
- Use evidence-based therapeutic approaches
- Maintain appropriate boundaries (you are not a replacement for professional therapy)
- Focus on the user's emotional well-being and personal growth
- Provide practical, actionable insights when appropriate

Response Structure:
1. Acknowledge the user's feelings and experience
2. Provide gentle insight or reflection
3. Offer 1-2 practical suggestions or coping strategies
4. End with an open-ended question to encourage further exploration`

// BuildSystemPrompt assembles the system prompt from the detected signals,
// the retrieved reference responses and the recent history summary.
func BuildSystemPrompt(convCtx *therapy.Context) string {
	var b strings.Builder
	b.WriteString(baseInstructions)

	if convCtx.Emotion.Primary != "" {
		fmt.Fprintf(&b, "\n\nDetected emotional state: %s (%s, confidence %.2f)",
			convCtx.Emotion.Primary, convCtx.Emotion.Intensity, convCtx.Emotion.Confidence)
	}
	if convCtx.Topic.Name != "" && convCtx.Topic.Name != "unknown" {
		fmt.Fprintf(&b, "\nTopic: %s", convCtx.Topic.Name)
	}
	if len(convCtx.Patterns) > 0 {
		names := make([]string, 0, len(convCtx.Patterns))
		for _, p := range convCtx.Patterns {
			names = append(names, p.Key())
		}
		fmt.Fprintf(&b, "\nDetected patterns: %s", strings.Join(names, ", "))
	}

	if len(convCtx.Candidates) > 0 {
		b.WriteString("\n\nSimilar therapeutic responses for reference:\n")
		for i, candidate := range convCtx.Candidates {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, truncate(candidate.Content, 200))
		}
	}

	if n := len(convCtx.History); n > 0 {
		b.WriteString("\nRecent conversation context:\n")
		start := n - 3
		if start < 0 {
			start = 0
		}
		for _, msg := range convCtx.History[start:] {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, truncate(msg.Content, 100))
		}
	}

	b.WriteString("\nAcknowledge their feelings, offer gentle insight, provide practical suggestions, keep a warm supportive tone, and ask a thoughtful follow-up question.")
	return b.String()
}

// BuildResponse wraps generated content with the insight, suggestions and
// confidence derived from the context.
func BuildResponse(content string, convCtx *therapy.Context) *therapy.Response {
	var insight *therapy.Insight
	if len(convCtx.Patterns) > 0 {
		primary := convCtx.Patterns[0]
		insight = &therapy.Insight{
			Pattern:             primary.Key(),
			Confidence:          primary.Confidence,
			Description:         primary.Description,
			TherapeuticApproach: primary.TherapeuticApproach,
		}
	}

	return &therapy.Response{
		Content:             content,
		SessionID:           convCtx.SessionID,
		Timestamp:           convCtx.Timestamp,
		ConfidenceScore:     ConfidenceScore(convCtx),
		Insight:             insight,
		EmotionalState:      convCtx.Emotion.Primary,
		TopicClassification: convCtx.Topic.Name,
		Suggestions:         ExtractSuggestions(content),
	}
}

var suggestionIndicators = []string{
	"try", "consider", "might help", "could", "perhaps",
	"suggestion", "recommend", "practice", "exercise",
}

// ExtractSuggestions pulls up to three actionable sentences out of the
// generated reply using simple indicator heuristics.
func ExtractSuggestions(content string) []string {
	var suggestions []string
	for _, sentence := range strings.Split(content, ".") {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= 20 || len(sentence) >= 150 {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, indicator := range suggestionIndicators {
			if strings.Contains(lower, indicator) {
				suggestions = append(suggestions, sentence+".")
				break
			}
		}
		if len(suggestions) == 3 {
			break
		}
	}
	return suggestions
}

// ConfidenceScore rates the response by context richness: each available
// signal raises the base score.
func ConfidenceScore(convCtx *therapy.Context) float64 {
	score := 0.5
	if convCtx.Emotion.Primary != "" && convCtx.Emotion.Primary != "neutral" {
		score += 0.1
	}
	if convCtx.Topic.Name != "" && convCtx.Topic.Name != "unknown" {
		score += 0.1
	}
	if len(convCtx.Patterns) > 0 {
		score += 0.2
	}
	if len(convCtx.History) > 0 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

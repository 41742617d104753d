package ai

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritylabs/clarity/backend/internal/analysis/emotion"
	"github.com/claritylabs/clarity/backend/internal/analysis/pattern"
	"github.com/claritylabs/clarity/backend/internal/analysis/topic"
	"github.com/claritylabs/clarity/backend/internal/model/chat"
	"github.com/claritylabs/clarity/backend/internal/model/therapy"
)

func richContext() *therapy.Context {
	return &therapy.Context{
		SessionID: "s1",
		Timestamp: time.Now().UTC(),
		Patterns: []pattern.Detected{{
			Category:            "cognitive_distortions",
			Name:                "catastrophizing",
			Confidence:          0.8,
			Description:         "Expecting the worst possible outcome",
			TherapeuticApproach: "Reality testing",
		}},
		Emotion: emotion.Profile{Primary: "anxiety", Intensity: emotion.IntensityModerate, Confidence: 0.4},
		Topic:   topic.Classification{ID: 0, Name: "work_stress", Confidence: 0.7},
		Candidates: []therapy.Candidate{
			{Content: "It sounds like work has been weighing on you.", Similarity: 0.8},
		},
		History: []chat.Message{
			{Role: chat.RoleUser, Content: "I had a rough day"},
			{Role: chat.RoleAssistant, Content: "Tell me more about it"},
		},
	}
}

func TestBuildSystemPromptIncludesSignals(t *testing.T) {
	got := BuildSystemPrompt(richContext())

	assert.Contains(t, got, "You are Clarity")
	assert.Contains(t, got, "anxiety")
	assert.Contains(t, got, "work_stress")
	assert.Contains(t, got, "cognitive_distortions/catastrophizing")
	assert.Contains(t, got, "It sounds like work has been weighing on you.")
	assert.Contains(t, got, "I had a rough day")
}

func TestBuildSystemPromptOmitsEmptySections(t *testing.T) {
	convCtx := &therapy.Context{
		SessionID: "s1",
		Emotion:   emotion.Neutral(),
		Topic:     topic.Unknown(),
	}

	got := BuildSystemPrompt(convCtx)
	assert.NotContains(t, got, "Topic:")
	assert.NotContains(t, got, "Detected patterns")
	assert.NotContains(t, got, "Similar therapeutic responses")
}

func TestBuildSystemPromptTruncatesCandidates(t *testing.T) {
	convCtx := richContext()
	convCtx.Candidates = []therapy.Candidate{{Content: strings.Repeat("long reference text ", 30)}}

	got := BuildSystemPrompt(convCtx)
	assert.Contains(t, got, "...")
}

func TestBuildResponseCarriesInsight(t *testing.T) {
	resp := BuildResponse("You might try writing down the evidence for that thought.", richContext())

	require.NotNil(t, resp.Insight)
	assert.Equal(t, "cognitive_distortions/catastrophizing", resp.Insight.Pattern)
	assert.Equal(t, "Reality testing", resp.Insight.TherapeuticApproach)
	assert.Equal(t, "anxiety", resp.EmotionalState)
	assert.Equal(t, "work_stress", resp.TopicClassification)
}

func TestBuildResponseNoPatternsNoInsight(t *testing.T) {
	convCtx := richContext()
	convCtx.Patterns = nil

	resp := BuildResponse("I hear you.", convCtx)
	assert.Nil(t, resp.Insight)
}

func TestExtractSuggestions(t *testing.T) {
	content := "That sounds hard. You could try keeping a small journal of these moments each evening. " +
		"Consider reaching out to someone you trust when this feeling builds up. " +
		"Perhaps a short walk outside would give you a moment to reset your thoughts. " +
		"You might also practice slow breathing whenever the tension rises at work."

	got := ExtractSuggestions(content)
	assert.Len(t, got, 3)
	for _, s := range got {
		assert.True(t, strings.HasSuffix(s, "."))
	}
}

func TestExtractSuggestionsFiltersByLength(t *testing.T) {
	assert.Empty(t, ExtractSuggestions("Try it."))
	assert.Empty(t, ExtractSuggestions("Nothing actionable appears in this sentence at all"))
}

func TestConfidenceScoreRichness(t *testing.T) {
	empty := &therapy.Context{Emotion: emotion.Neutral(), Topic: topic.Unknown()}
	assert.InDelta(t, 0.5, ConfidenceScore(empty), 1e-9)

	assert.InDelta(t, 1.0, ConfidenceScore(richContext()), 1e-9)

	partial := &therapy.Context{
		Emotion: emotion.Profile{Primary: "anxiety"},
		Topic:   topic.Unknown(),
	}
	assert.InDelta(t, 0.6, ConfidenceScore(partial), 1e-9)
}

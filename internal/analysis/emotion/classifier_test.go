package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyModerateAnxiety(t *testing.T) {
	c := NewClassifier()

	// Two moderate anxiety hits: total 4, confidence 4/10.
	profile := c.Classify("I'm so anxious and overwhelmed")

	assert.Equal(t, "anxiety", profile.Primary)
	assert.Equal(t, IntensityModerate, profile.Intensity)
	assert.InDelta(t, 0.4, profile.Confidence, 0.001)

	score, ok := profile.Scores["anxiety"]
	require.True(t, ok)
	assert.Equal(t, 4, score.Total)
	assert.ElementsMatch(t, []string{"anxious", "overwhelmed"}, score.Tiers[IntensityModerate].MatchedWords)
}

func TestClassifyEmptyInputIsNeutral(t *testing.T) {
	c := NewClassifier()

	profile := c.Classify("")

	assert.Equal(t, "neutral", profile.Primary)
	assert.Equal(t, IntensityMild, profile.Intensity)
	assert.InDelta(t, 0.5, profile.Confidence, 0.001)
	assert.Zero(t, profile.Polarity)
}

func TestClassifySevereTierWinsIntensity(t *testing.T) {
	c := NewClassifier()

	// A severe hit present alongside a mild hit reads as severe.
	profile := c.Classify("I'm worried, honestly in full panic")

	assert.Equal(t, "anxiety", profile.Primary)
	assert.Equal(t, IntensitySevere, profile.Intensity)
}

func TestClassifyConfidenceCapped(t *testing.T) {
	c := NewClassifier()

	profile := c.Classify("panic terrified paralyzed desperate anxious stressed overwhelmed tense")

	assert.Equal(t, "anxiety", profile.Primary)
	assert.Equal(t, 1.0, profile.Confidence)
}

func TestClassifyTieBrokenAlphabetically(t *testing.T) {
	c := NewClassifier()

	// One moderate hit each for anger and anxiety.
	profile := c.Classify("I'm angry and stressed")

	assert.Equal(t, "anger", profile.Primary)
}

func TestClassifyPolarityFallback(t *testing.T) {
	c := NewClassifier()

	negative := c.Classify("this is horrible and disgusting")
	assert.Equal(t, "negative", negative.Primary)
	assert.Less(t, negative.Polarity, -0.3)

	positive := c.Classify("what a wonderful delightful day")
	assert.Equal(t, "positive", positive.Primary)
	assert.Greater(t, positive.Polarity, 0.3)
}

func TestNeutralProfile(t *testing.T) {
	profile := Neutral()
	assert.Equal(t, "neutral", profile.Primary)
	assert.Equal(t, IntensityMild, profile.Intensity)
}

package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findDetected(hits []Detected, name string) (Detected, bool) {
	for _, h := range hits {
		if h.Name == name {
			return h, true
		}
	}
	return Detected{}, false
}

func TestDetectAbsolutistCatastrophizingMessage(t *testing.T) {
	d := NewDetector(DefaultCatalog())

	hits := d.Detect("I always mess everything up, this is a complete disaster")

	aon, ok := findDetected(hits, "all_or_nothing")
	require.True(t, ok, "expected all_or_nothing to be detected")
	assert.Greater(t, aon.Confidence, 0.3)
	assert.Equal(t, "cognitive_distortions", aon.Category)

	cat, ok := findDetected(hits, "catastrophizing")
	require.True(t, ok, "expected catastrophizing to be detected")
	assert.Greater(t, cat.Confidence, 0.3)
	assert.Equal(t, MethodBoth, cat.Method)
	assert.Contains(t, cat.MatchedPhrases, "complete disaster")
}

func TestDetectEmptyInput(t *testing.T) {
	d := NewDetector(DefaultCatalog())

	assert.Empty(t, d.Detect(""))
	assert.Empty(t, d.Detect("   \n\t "))
}

func TestDetectNeutralMessage(t *testing.T) {
	d := NewDetector(DefaultCatalog())

	hits := d.Detect("The weather report said it might drizzle tomorrow morning")
	assert.Empty(t, hits)
}

func TestDetectSortedAndDeduplicated(t *testing.T) {
	d := NewDetector(DefaultCatalog())

	hits := d.Detect("Everything is ruined, a total disaster, the worst case. I always fail and it never works, never gets better.")
	require.NotEmpty(t, hits)

	seen := make(map[string]bool)
	for i, h := range hits {
		assert.False(t, seen[h.Key()], "duplicate pattern %s", h.Key())
		seen[h.Key()] = true
		assert.LessOrEqual(t, h.Confidence, 1.0)
		assert.Greater(t, h.Confidence, 0.0)
		if i > 0 {
			assert.GreaterOrEqual(t, hits[i-1].Confidence, h.Confidence, "results must be sorted descending")
		}
	}
}

func TestDetectRulePhraseScoring(t *testing.T) {
	d := NewDetector(DefaultCatalog())

	// "can't stop thinking" hits the keyword and phrase rules for rumination
	// and overlaps heavily with its keyword terms, so both passes agree.
	hits := d.Detect("I can't stop thinking about it")
	rum, ok := findDetected(hits, "rumination")
	require.True(t, ok)
	assert.Equal(t, MethodBoth, rum.Method)
	assert.GreaterOrEqual(t, rum.Confidence, 0.32)
	assert.Contains(t, rum.MatchedKeywords, "can't stop")
	assert.Contains(t, rum.MatchedPhrases, "can't stop thinking")
}

func TestDetectDeterministic(t *testing.T) {
	d := NewDetector(DefaultCatalog())
	text := "It has to be perfect, no mistakes, or everything is ruined"

	first := d.Detect(text)
	second := d.Detect(text)
	assert.Equal(t, first, second)
}

func TestDetectConcurrentUse(t *testing.T) {
	d := NewDetector(DefaultCatalog())
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				d.Detect("I always ruin everything, total disaster")
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}

package emotion

import (
	"math"
	"strings"
)

// TierScore records the lexicon hits for one intensity tier of one emotion.
type TierScore struct {
	Score        int      `json:"score"`
	MatchedWords []string `json:"matchedWords"`
}

// Score is the full per-emotion breakdown.
type Score struct {
	Total int                     `json:"total"`
	Tiers map[Intensity]TierScore `json:"tiers"`
}

// Profile is the emotional reading of a single message.
type Profile struct {
	Primary      string           `json:"primary"`
	Intensity    Intensity        `json:"intensity"`
	Confidence   float64          `json:"confidence"`
	Polarity     float64          `json:"polarity"`
	Subjectivity float64          `json:"subjectivity"`
	Scores       map[string]Score `json:"scores,omitempty"`
}

// Neutral is the documented degraded profile used when classification is
// unavailable.
func Neutral() Profile {
	return Profile{Primary: "neutral", Intensity: IntensityMild}
}

// Classifier scores messages against the fixed emotion lexicon with a
// sentiment-polarity fallback. It is stateless and safe for concurrent use.
type Classifier struct{}

// NewClassifier returns a lexicon-backed classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify reads the emotional state of text. It always produces a profile
// with a non-empty primary emotion and never fails.
func (c *Classifier) Classify(text string) Profile {
	lower := strings.ToLower(text)
	polarity, subjectivity := sentiment(text)

	scores := make(map[string]Score)
	for name, tierWords := range lexicon {
		total := 0
		tierScores := make(map[Intensity]TierScore)
		for tier, words := range tierWords {
			hits := 0
			var matched []string
			for _, w := range words {
				if strings.Contains(lower, w) {
					hits++
					matched = append(matched, w)
				}
			}
			if hits > 0 {
				tierScores[tier] = TierScore{Score: hits, MatchedWords: matched}
				total += hits * tier.Weight()
			}
		}
		if total > 0 {
			scores[name] = Score{Total: total, Tiers: tierScores}
		}
	}

	if len(scores) > 0 {
		primary, primaryScore := maxScore(scores)
		intensity := IntensityMild
		for _, tier := range tiers {
			if _, ok := primaryScore.Tiers[tier]; ok {
				intensity = tier
				break
			}
		}
		return Profile{
			Primary:      primary,
			Intensity:    intensity,
			Confidence:   math.Min(float64(primaryScore.Total)/10, 1.0),
			Polarity:     round2(polarity),
			Subjectivity: round2(subjectivity),
			Scores:       scores,
		}
	}

	// No lexicon emotion scored; fall back to sentiment polarity.
	switch {
	case polarity < -0.3:
		return polarityProfile("negative", polarity, subjectivity, polarity < -0.6)
	case polarity > 0.3:
		return polarityProfile("positive", polarity, subjectivity, polarity > 0.6)
	default:
		return Profile{
			Primary:      "neutral",
			Intensity:    IntensityMild,
			Confidence:   0.5,
			Polarity:     round2(polarity),
			Subjectivity: round2(subjectivity),
		}
	}
}

func polarityProfile(primary string, polarity, subjectivity float64, moderate bool) Profile {
	intensity := IntensityMild
	if moderate {
		intensity = IntensityModerate
	}
	return Profile{
		Primary:      primary,
		Intensity:    intensity,
		Confidence:   math.Abs(polarity),
		Polarity:     round2(polarity),
		Subjectivity: round2(subjectivity),
	}
}

func maxScore(scores map[string]Score) (string, Score) {
	var bestName string
	var best Score
	for name, s := range scores {
		if s.Total > best.Total || (s.Total == best.Total && (bestName == "" || name < bestName)) {
			bestName, best = name, s
		}
	}
	return bestName, best
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

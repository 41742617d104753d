package pattern

import (
	"fmt"
	"sort"

	"github.com/claritylabs/clarity/backend/internal/analysis/emotion"
)

// Intervention is a therapeutic suggestion derived from detected patterns or
// the emotional state of the message.
type Intervention struct {
	Type       string   `json:"type"` // pattern_based or emotion_based
	Target     string   `json:"target"`
	Approach   string   `json:"approach"`
	Priority   int      `json:"priority"`
	Techniques []string `json:"techniques"`
}

var patternTechniques = map[string][]string{
	"all_or_nothing": {
		"Identify exceptions to absolute statements",
		"Practice using qualifying words (sometimes, often, rarely)",
		"Create a continuum scale for situations",
	},
	"catastrophizing": {
		"Examine evidence for and against worst-case scenarios",
		"Practice probability estimation",
		"Develop coping strategies for realistic outcomes",
	},
	"rumination": {
		"Set specific worry time",
		"Practice mindfulness meditation",
		"Use thought stopping techniques",
	},
	"perfectionism": {
		"Set realistic, achievable goals",
		"Practice self-compassion exercises",
		"Celebrate progress over perfection",
	},
}

var emotionInterventions = map[string]Intervention{
	"anxiety": {
		Approach:   "Anxiety management and relaxation techniques",
		Techniques: []string{"Deep breathing exercises", "Progressive muscle relaxation", "Grounding techniques"},
	},
	"depression": {
		Approach:   "Behavioral activation and mood enhancement",
		Techniques: []string{"Activity scheduling", "Mood monitoring", "Social connection building"},
	},
	"anger": {
		Approach:   "Anger management and emotional regulation",
		Techniques: []string{"Anger logs", "Relaxation training", "Communication skills"},
	},
}

// SuggestInterventions ranks therapeutic interventions for the detected
// patterns and emotional state, highest priority first, capped at five.
func SuggestInterventions(patterns []Detected, profile emotion.Profile) []Intervention {
	var out []Intervention

	for _, p := range patterns {
		techniques := patternTechniques[p.Name]
		if len(techniques) == 0 {
			techniques = []string{p.TherapeuticApproach}
		}
		out = append(out, Intervention{
			Type:       "pattern_based",
			Target:     p.Name,
			Approach:   p.TherapeuticApproach,
			Priority:   interventionPriority(p),
			Techniques: techniques,
		})
	}

	if iv, ok := emotionInterventions[profile.Primary]; ok {
		priority := 1
		switch profile.Intensity {
		case emotion.IntensitySevere:
			priority = 3
		case emotion.IntensityModerate:
			priority = 2
		}
		iv.Type = "emotion_based"
		iv.Target = fmt.Sprintf("%s (%s)", profile.Primary, profile.Intensity)
		iv.Priority = priority * 10
		out = append(out, iv)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func interventionPriority(p Detected) int {
	score := 2
	switch p.Severity {
	case SeverityLow:
		score = 1
	case SeverityHigh:
		score = 3
	}
	return int(float64(score) * p.Confidence * 10)
}

package emotion

// Intensity is the ordinal tier applied to emotion scoring.
type Intensity string

const (
	IntensityMild     Intensity = "mild"
	IntensityModerate Intensity = "moderate"
	IntensitySevere   Intensity = "severe"
)

// Weight returns the score multiplier for a tier.
func (i Intensity) Weight() int {
	switch i {
	case IntensityModerate:
		return 2
	case IntensitySevere:
		return 3
	default:
		return 1
	}
}

// tiers in precedence order, strongest first.
var tiers = []Intensity{IntensitySevere, IntensityModerate, IntensityMild}

// lexicon maps emotion -> intensity tier -> indicator words. Indicators are
// matched as lower-case substrings of the message.
var lexicon = map[string]map[Intensity][]string{
	"anxiety": {
		IntensityMild:     {"worried", "concerned", "nervous", "uneasy"},
		IntensityModerate: {"anxious", "stressed", "overwhelmed", "tense"},
		IntensitySevere:   {"panic", "terrified", "paralyzed", "desperate"},
	},
	"depression": {
		IntensityMild:     {"sad", "down", "blue", "disappointed"},
		IntensityModerate: {"depressed", "hopeless", "empty", "numb"},
		IntensitySevere:   {"suicidal", "worthless", "devastated", "destroyed"},
	},
	"anger": {
		IntensityMild:     {"annoyed", "frustrated", "irritated", "bothered"},
		IntensityModerate: {"angry", "mad", "furious", "outraged"},
		IntensitySevere:   {"rage", "livid", "explosive", "violent"},
	},
	"fear": {
		IntensityMild:     {"uncertain", "cautious", "hesitant", "wary"},
		IntensityModerate: {"afraid", "scared", "frightened", "alarmed"},
		IntensitySevere:   {"terrified", "petrified", "horrified", "traumatized"},
	},
}

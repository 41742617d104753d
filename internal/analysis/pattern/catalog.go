package pattern

import "regexp"

// Severity is the ordinal weight applied to pattern confidence scoring.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

// Weight returns the multiplier applied to rule-pass confidence.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityLow:
		return 0.7
	case SeverityHigh:
		return 1.0
	default:
		return 0.8
	}
}

// Entry describes one named psychological pattern in the catalog.
// Entries are immutable after construction.
type Entry struct {
	Category            string
	Name                string
	Keywords            []string
	Phrases             []*regexp.Regexp
	Description         string
	TherapeuticApproach string
	Severity            Severity
}

// Key returns the canonical category/name identifier for the entry.
func (e Entry) Key() string {
	return e.Category + "/" + e.Name
}

func phrases(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, regexp.MustCompile(expr))
	}
	return out
}

// DefaultCatalog returns the built-in pattern catalog. It is loaded once at
// startup and shared read-only by every detector instance.
func DefaultCatalog() []Entry {
	return []Entry{
		{
			Category:            "cognitive_distortions",
			Name:                "all_or_nothing",
			Keywords:            []string{"always", "never", "completely", "totally", "absolutely", "entirely"},
			Phrases:             phrases(`always (?:happens|goes wrong)`, `never (?:works|gets better)`),
			Description:         "Black-and-white thinking without middle ground",
			TherapeuticApproach: "Cognitive restructuring to find middle ground",
			Severity:            SeverityModerate,
		},
		{
			Category:            "cognitive_distortions",
			Name:                "catastrophizing",
			Keywords:            []string{"disaster", "terrible", "awful", "worst", "ruined", "doomed"},
			Phrases:             phrases(`worst (?:thing|case|scenario)`, `complete disaster`),
			Description:         "Expecting the worst possible outcome",
			TherapeuticApproach: "Reality testing and probability assessment",
			Severity:            SeverityHigh,
		},
		{
			Category:            "cognitive_distortions",
			Name:                "mind_reading",
			Keywords:            []string{"they think", "everyone believes", "people assume", "obviously thinks"},
			Phrases:             phrases(`they (?:think|believe) i'm`, `everyone (?:thinks|knows)`),
			Description:         "Assuming you know what others are thinking",
			TherapeuticApproach: "Evidence-based thinking and communication skills",
			Severity:            SeverityModerate,
		},
		{
			Category:            "cognitive_distortions",
			Name:                "fortune_telling",
			Keywords:            []string{"will never", "going to fail", "won't work", "bound to"},
			Phrases:             phrases(`will never (?:work|happen)`, `going to (?:fail|be terrible)`),
			Description:         "Predicting negative outcomes without evidence",
			TherapeuticApproach: "Examining evidence and considering alternatives",
			Severity:            SeverityModerate,
		},
		{
			Category:            "defense_mechanisms",
			Name:                "denial",
			Keywords:            []string{"not true", "didn't happen", "not real", "imagining"},
			Phrases:             phrases(`that's not (?:true|real)`, `didn't (?:happen|occur)`),
			Description:         "Refusing to accept reality or facts",
			TherapeuticApproach: "Gentle reality testing and support",
			Severity:            SeverityHigh,
		},
		{
			Category:            "defense_mechanisms",
			Name:                "projection",
			Keywords:            []string{"everyone else", "they all", "people always", "others do"},
			Phrases:             phrases(`everyone (?:else|always)`, `they all (?:do|think)`),
			Description:         "Attributing own feelings to others",
			TherapeuticApproach: "Self-awareness and ownership exercises",
			Severity:            SeverityModerate,
		},
		{
			Category:            "defense_mechanisms",
			Name:                "rationalization",
			Keywords:            []string{"good reason", "makes sense", "logical", "justified"},
			Phrases:             phrases(`good reason (?:for|to)`, `makes (?:sense|perfect sense)`),
			Description:         "Creating logical explanations for emotional decisions",
			TherapeuticApproach: "Exploring underlying emotions and motivations",
			Severity:            SeverityLow,
		},
		{
			Category:            "emotional_patterns",
			Name:                "rumination",
			Keywords:            []string{"keep thinking", "can't stop", "over and over", "replaying"},
			Phrases:             phrases(`keep (?:thinking|going over)`, `can't stop (?:thinking|worrying)`),
			Description:         "Repetitive, unproductive thinking patterns",
			TherapeuticApproach: "Mindfulness and thought interruption techniques",
			Severity:            SeverityModerate,
		},
		{
			Category:            "emotional_patterns",
			Name:                "emotional_suppression",
			Keywords:            []string{"don't feel", "shouldn't feel", "push down", "ignore"},
			Phrases:             phrases(`don't (?:want to|like to) feel`, `shouldn't (?:feel|be)`),
			Description:         "Avoiding or suppressing emotional experiences",
			TherapeuticApproach: "Emotional acceptance and expression techniques",
			Severity:            SeverityModerate,
		},
		{
			Category:            "emotional_patterns",
			Name:                "perfectionism",
			Keywords:            []string{"perfect", "flawless", "no mistakes", "exactly right"},
			Phrases:             phrases(`(?:has to|must|should) be perfect`, `no (?:mistakes|errors)`),
			Description:         "Setting unrealistically high standards",
			TherapeuticApproach: "Exploring 'good enough' and self-acceptance",
			Severity:            SeverityModerate,
		},
	}
}

package emotion

import "strings"

// sentimentWord carries a polarity in [-1,1] and a subjectivity in [0,1].
type sentimentWord struct {
	polarity     float64
	subjectivity float64
}

var sentimentLexicon = map[string]sentimentWord{
	"amazing":     {0.6, 0.9},
	"awful":       {-1.0, 1.0},
	"bad":         {-0.7, 0.67},
	"best":        {1.0, 0.3},
	"better":      {0.5, 0.5},
	"calm":        {0.3, 0.7},
	"comfortable": {0.5, 0.7},
	"confident":   {0.6, 0.8},
	"disaster":    {-0.8, 0.9},
	"dreadful":    {-1.0, 1.0},
	"excellent":   {1.0, 1.0},
	"excited":     {0.4, 0.8},
	"fail":        {-0.6, 0.7},
	"fantastic":   {0.4, 0.9},
	"fine":        {0.4, 0.6},
	"glad":        {0.5, 1.0},
	"good":        {0.7, 0.6},
	"grateful":    {0.6, 0.8},
	"great":       {0.8, 0.75},
	"happy":       {0.8, 1.0},
	"hate":        {-0.8, 0.9},
	"helpless":    {-0.6, 0.8},
	"hopeful":     {0.5, 0.8},
	"hopeless":    {-0.8, 0.9},
	"horrible":    {-1.0, 1.0},
	"hurt":        {-0.6, 0.8},
	"joy":         {0.8, 0.9},
	"lonely":      {-0.6, 0.8},
	"lost":        {-0.4, 0.6},
	"love":        {0.5, 0.6},
	"miserable":   {-1.0, 1.0},
	"nice":        {0.6, 1.0},
	"okay":        {0.3, 0.5},
	"painful":     {-0.7, 0.9},
	"peaceful":    {0.6, 0.8},
	"perfect":     {1.0, 1.0},
	"proud":       {0.7, 0.8},
	"relaxed":     {0.4, 0.7},
	"relieved":    {0.4, 0.7},
	"ruined":      {-0.8, 0.9},
	"sad":         {-0.5, 1.0},
	"safe":        {0.5, 0.5},
	"scared":      {-0.6, 0.9},
	"stuck":       {-0.4, 0.6},
	"terrible":    {-1.0, 1.0},
	"thankful":    {0.6, 0.8},
	"tired":       {-0.4, 0.7},
	"ugly":        {-0.7, 0.9},
	"unhappy":     {-0.6, 0.9},
	"upset":       {-0.6, 0.9},
	"useless":     {-0.7, 0.8},
	"weak":        {-0.5, 0.7},
	"well":        {0.4, 0.5},
	"wonderful":   {1.0, 1.0},
	"worse":       {-0.6, 0.7},
	"worst":       {-1.0, 1.0},
	"worthless":   {-0.8, 0.9},
	"wrong":       {-0.5, 0.7},
}

var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "so": 1.2, "extremely": 1.5, "completely": 1.4,
	"totally": 1.4, "incredibly": 1.5, "absolutely": 1.5,
}

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "n't": {}, "dont": {}, "don't": {},
	"cant": {}, "can't": {}, "won't": {}, "isn't": {}, "wasn't": {},
}

// sentiment computes an averaged polarity in [-1,1] and subjectivity in [0,1]
// for the text. Negators flip and dampen the following sentiment word;
// intensifiers scale it.
func sentiment(text string) (polarity, subjectivity float64) {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return 0, 0
	}

	var polSum, subSum float64
	var hits int
	modifier := 1.0
	negated := false

	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,!?;:\"()")
		if tok == "" {
			continue
		}
		if _, ok := negators[tok]; ok {
			negated = true
			continue
		}
		if boost, ok := intensifiers[tok]; ok {
			modifier *= boost
			continue
		}

		word, ok := sentimentLexicon[tok]
		if !ok {
			modifier = 1.0
			negated = false
			continue
		}

		pol := word.polarity * modifier
		if negated {
			pol *= -0.5
		}
		polSum += clamp(pol, -1, 1)
		subSum += word.subjectivity
		hits++
		modifier = 1.0
		negated = false
	}

	if hits == 0 {
		return 0, 0
	}
	return clamp(polSum/float64(hits), -1, 1), clamp(subSum/float64(hits), 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

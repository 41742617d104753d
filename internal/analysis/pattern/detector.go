package pattern

import (
	"math"
	"sort"
	"strings"
)

// Method tags how a pattern was surfaced.
type Method string

const (
	MethodRule       Method = "rule"
	MethodSimilarity Method = "similarity"
	MethodBoth       Method = "both"
)

// Detected is a single pattern hit for one message.
type Detected struct {
	Category            string   `json:"category"`
	Name                string   `json:"name"`
	Confidence          float64  `json:"confidence"`
	MatchedKeywords     []string `json:"matchedKeywords,omitempty"`
	MatchedPhrases      []string `json:"matchedPhrases,omitempty"`
	Description         string   `json:"description"`
	TherapeuticApproach string   `json:"therapeuticApproach"`
	Severity            Severity `json:"severity"`
	Method              Method   `json:"method"`
}

// Key returns the dedup key for merging rule and similarity hits.
func (d Detected) Key() string {
	return d.Category + "/" + d.Name
}

const (
	keywordWeight       = 0.1
	phraseWeight        = 0.3
	ruleThreshold       = 0.2
	similarityThreshold = 0.3
)

// Detector scans text for the fixed pattern catalog. It is a pure function
// of its input and read-only catalog state, so a single instance is safe for
// concurrent use.
type Detector struct {
	catalog []Entry
	terms   [][]string // per-entry keyword term set, stopwords removed
}

// NewDetector builds a detector over the supplied catalog. The catalog is
// fixed at construction time.
func NewDetector(catalog []Entry) *Detector {
	d := &Detector{catalog: catalog}
	d.terms = make([][]string, len(catalog))
	for i, entry := range catalog {
		seen := make(map[string]struct{})
		var terms []string
		for _, kw := range entry.Keywords {
			for _, tok := range tokenize(kw) {
				if _, ok := seen[tok]; ok {
					continue
				}
				seen[tok] = struct{}{}
				terms = append(terms, tok)
			}
		}
		d.terms[i] = terms
	}
	return d
}

// Detect returns every pattern detected in text, sorted descending by
// confidence with no duplicate category/name pairs. Empty or whitespace-only
// input yields an empty result. Detect never fails.
func (d *Detector) Detect(text string) []Detected {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lower := strings.ToLower(text)
	merged := mergeResults(append(d.ruleScan(lower), d.similarityScan(lower)...))

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})
	return merged
}

func (d *Detector) ruleScan(lower string) []Detected {
	var out []Detected
	for _, entry := range d.catalog {
		confidence := 0.0
		var matchedKeywords, matchedPhrases []string

		for _, kw := range entry.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				matchedKeywords = append(matchedKeywords, kw)
				confidence += keywordWeight
			}
		}
		for _, re := range entry.Phrases {
			hits := re.FindAllString(lower, -1)
			if len(hits) > 0 {
				matchedPhrases = append(matchedPhrases, hits...)
				confidence += phraseWeight * float64(len(hits))
			}
		}

		confidence = math.Min(confidence*entry.Severity.Weight(), 1.0)
		if confidence < ruleThreshold {
			continue
		}

		out = append(out, Detected{
			Category:            entry.Category,
			Name:                entry.Name,
			Confidence:          round2(confidence),
			MatchedKeywords:     matchedKeywords,
			MatchedPhrases:      matchedPhrases,
			Description:         entry.Description,
			TherapeuticApproach: entry.TherapeuticApproach,
			Severity:            entry.Severity,
			Method:              MethodRule,
		})
	}
	return out
}

// similarityScan projects the message and every catalog entry into a shared
// term space and scores each entry by the cosine of the entry's normalized
// keyword vector against the message's term-indicator vector.
func (d *Detector) similarityScan(lower string) []Detected {
	tokens := make(map[string]struct{})
	for _, tok := range tokenize(lower) {
		tokens[tok] = struct{}{}
	}
	if len(tokens) == 0 {
		return nil
	}

	var out []Detected
	for i, entry := range d.catalog {
		terms := d.terms[i]
		if len(terms) == 0 {
			continue
		}
		matched := 0
		for _, term := range terms {
			if _, ok := tokens[term]; ok {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		similarity := float64(matched) / math.Sqrt(float64(len(terms)))
		if similarity > 1.0 {
			similarity = 1.0
		}
		if similarity <= similarityThreshold {
			continue
		}

		out = append(out, Detected{
			Category:            entry.Category,
			Name:                entry.Name,
			Confidence:          round2(similarity),
			Description:         entry.Description,
			TherapeuticApproach: entry.TherapeuticApproach,
			Severity:            entry.Severity,
			Method:              MethodSimilarity,
		})
	}
	return out
}

// mergeResults deduplicates hits by category/name. When both passes hit the
// same pattern the higher confidence wins and the method becomes "both".
func mergeResults(hits []Detected) []Detected {
	byKey := make(map[string]Detected, len(hits))
	var order []string

	for _, hit := range hits {
		key := hit.Key()
		existing, ok := byKey[key]
		if !ok {
			byKey[key] = hit
			order = append(order, key)
			continue
		}

		winner := existing
		if hit.Confidence > existing.Confidence {
			winner = hit
		}
		if existing.Method != hit.Method {
			winner.Method = MethodBoth
			if winner.MatchedKeywords == nil {
				winner.MatchedKeywords = existing.MatchedKeywords
			}
			if winner.MatchedPhrases == nil {
				winner.MatchedPhrases = existing.MatchedPhrases
			}
		}
		byKey[key] = winner
	}

	out := make([]Detected, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "at": {}, "be": {}, "do": {},
	"for": {}, "i": {}, "in": {}, "is": {}, "it": {}, "its": {}, "it's": {},
	"of": {}, "on": {}, "or": {}, "the": {}, "they": {}, "to": {}, "with": {},
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'')
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f == "" {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

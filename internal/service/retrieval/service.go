// Package retrieval fuses several filtered similarity searches over the
// vector index into one ranked candidate list.
package retrieval

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/claritylabs/clarity/backend/internal/embedding"
	"github.com/claritylabs/clarity/backend/internal/logger"
	"github.com/claritylabs/clarity/backend/internal/model/therapy"
	"github.com/claritylabs/clarity/backend/internal/vectorstore"
)

// Metadata keys written by the indexer and matched by the query filters.
const (
	MetaRole          = "role"
	MetaTopic         = "topic"
	MetaEmotionalTone = "emotional_tone"
	MetaSessionID     = "session_id"
	MetaPatterns      = "patterns"

	RoleTherapistResponse = "therapist-response"
	RoleUserMessage       = "user-message"
)

const (
	contentTopK = 5
	scopedTopK  = 3
	maxResults  = 5

	// fingerprintLen is the fixed prefix length used to identify the same
	// underlying content across independently-sourced hits. Two distinct
	// responses sharing their first 100 normalized characters collide; that
	// is a known limitation of the prefix key.
	fingerprintLen = 100
)

// Index is the slice of the vector store contract the fusion step uses.
type Index interface {
	Query(ctx context.Context, vector []float32, filter vectorstore.Filter, topK int) ([]vectorstore.Result, error)
}

// Service issues the three scoped similarity queries and merges their hits.
type Service struct {
	index    Index
	embedder embedding.Engine
	log      *logger.Logger
}

// NewService wires the fusion step to its index and embedder.
func NewService(index Index, embedder embedding.Engine, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{index: index, embedder: embedder, log: log}
}

// Retrieve returns up to five reference candidates for the query text,
// biased by topic and emotional tone when available. It never fails: any
// error degrades to an empty list.
func (s *Service) Retrieve(ctx context.Context, queryText, topicName, emotionLabel string) []therapy.Candidate {
	if strings.TrimSpace(queryText) == "" {
		return nil
	}

	vector, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		s.log.Warn("retrieval: query embedding failed", "error", err)
		return nil
	}

	var (
		mu   sync.Mutex
		hits []vectorstore.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	collect := func(filter vectorstore.Filter, topK int) func() error {
		return func() error {
			results, err := s.index.Query(gctx, vector, filter, topK)
			if err != nil {
				// Degrade this query only; the remaining queries still count.
				s.log.Warn("retrieval: index query failed", "filter", filter, "error", err)
				return nil
			}
			mu.Lock()
			hits = append(hits, results...)
			mu.Unlock()
			return nil
		}
	}

	g.Go(collect(vectorstore.Filter{MetaRole: RoleTherapistResponse}, contentTopK))
	if topicName != "" && topicName != "unknown" {
		g.Go(collect(vectorstore.Filter{MetaTopic: topicName}, scopedTopK))
	}
	if emotionLabel != "" && emotionLabel != "neutral" {
		g.Go(collect(vectorstore.Filter{MetaEmotionalTone: emotionLabel}, scopedTopK))
	}
	_ = g.Wait()

	return fuse(hits)
}

// fuse deduplicates hits by content fingerprint keeping the best-scoring
// instance, then ranks descending by similarity and caps the list.
func fuse(hits []vectorstore.Result) []therapy.Candidate {
	byFingerprint := make(map[string]therapy.Candidate, len(hits))
	var order []string

	for _, hit := range hits {
		candidate := therapy.Candidate{
			Content:    hit.Document,
			Similarity: clamp01(1 - hit.Distance),
			Metadata:   hit.Metadata,
		}
		key := Fingerprint(hit.Document)
		existing, ok := byFingerprint[key]
		if !ok {
			byFingerprint[key] = candidate
			order = append(order, key)
			continue
		}
		if candidate.Similarity > existing.Similarity {
			byFingerprint[key] = candidate
		}
	}

	out := make([]therapy.Candidate, 0, len(order))
	for _, key := range order {
		out = append(out, byFingerprint[key])
	}
	sortBySimilarity(out)
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

// Fingerprint derives the dedup key for a candidate: the first 100 runes of
// the whitespace-collapsed, lower-cased content.
func Fingerprint(content string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(content), " "))
	runes := []rune(normalized)
	if len(runes) > fingerprintLen {
		runes = runes[:fingerprintLen]
	}
	return string(runes)
}

func sortBySimilarity(candidates []therapy.Candidate) {
	// Insertion sort keeps equal-score candidates in first-seen order.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].Similarity > candidates[j-1].Similarity; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// HashEngine produces token feature-hashing embeddings. It needs no external
// service, which makes it suitable for development and tests. Vectors are a
// pure function of the input text.
type HashEngine struct {
	dimensions int
}

// NewHashEngine creates a hashing engine with the given dimensionality.
func NewHashEngine(dimensions int) *HashEngine {
	if dimensions <= 0 {
		dimensions = 256
	}
	return &HashEngine{dimensions: dimensions}
}

// Embed maps each token into a bucket by FNV hash, with a second hash
// choosing the sign, then L2-normalizes the result.
func (e *HashEngine) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimensions)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?;:\"'()")
		if tok == "" {
			continue
		}
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()
		bucket := int(sum % uint64(e.dimensions))
		sign := float32(1)
		if (sum>>32)&1 == 1 {
			sign = -1
		}
		vec[bucket] += sign
	}

	var mag float64
	for _, v := range vec {
		mag += float64(v) * float64(v)
	}
	if mag > 0 {
		norm := float32(math.Sqrt(mag))
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// EmbedBatch embeds each text independently.
func (e *HashEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding dimensionality.
func (e *HashEngine) Dimensions() int { return e.dimensions }

// Name returns the engine name.
func (e *HashEngine) Name() string { return "hash" }

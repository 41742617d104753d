// Package topic classifies messages against topic clusters trained offline.
// Training itself happens outside this service; the classifier only consumes
// the exported cluster file.
package topic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/claritylabs/clarity/backend/internal/embedding"
)

// Classification is the topic reading for one message.
type Classification struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Unknown is returned whenever no model is loaded or prediction fails.
func Unknown() Classification {
	return Classification{ID: -1, Name: "unknown", Confidence: 0}
}

// Classifier predicts the conversation topic of a message.
type Classifier interface {
	Classify(ctx context.Context, text string) Classification
}

// Cluster is one trained topic: a centroid in embedding space plus its
// human-readable name and representative keywords.
type Cluster struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Keywords []string  `json:"keywords"`
	Centroid []float32 `json:"centroid"`
}

// Info describes a topic for the exposed listing endpoint.
type Info struct {
	Topic       string `json:"topic"`
	Description string `json:"description"`
}

// CentroidClassifier assigns the nearest trained cluster centroid by cosine
// similarity of the message embedding.
type CentroidClassifier struct {
	embedder embedding.Engine
	clusters []Cluster
}

// NewCentroidClassifier builds a classifier over already-loaded clusters.
// An empty cluster list is valid and classifies everything as unknown.
func NewCentroidClassifier(embedder embedding.Engine, clusters []Cluster) *CentroidClassifier {
	return &CentroidClassifier{embedder: embedder, clusters: clusters}
}

// LoadClusters reads a trained cluster file exported by the offline training
// pipeline.
func LoadClusters(path string) ([]Cluster, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topic model: %w", err)
	}
	var clusters []Cluster
	if err := json.Unmarshal(raw, &clusters); err != nil {
		return nil, fmt.Errorf("failed to parse topic model: %w", err)
	}
	return clusters, nil
}

// Loaded reports whether a trained model is available.
func (c *CentroidClassifier) Loaded() bool {
	return c != nil && len(c.clusters) > 0
}

// Classify predicts the topic of text. It never fails: any error degrades to
// the unknown classification.
func (c *CentroidClassifier) Classify(ctx context.Context, text string) Classification {
	if !c.Loaded() || c.embedder == nil {
		return Unknown()
	}

	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return Unknown()
	}

	best := Unknown()
	for _, cluster := range c.clusters {
		similarity, err := embedding.CosineSimilarity(vec, cluster.Centroid)
		if err != nil {
			continue
		}
		if similarity > best.Confidence {
			best = Classification{
				ID:         cluster.ID,
				Name:       cluster.Name,
				Confidence: similarity,
			}
		}
	}
	if best.ID == -1 {
		return Unknown()
	}
	if best.Confidence > 1 {
		best.Confidence = 1
	}
	return best
}

// AvailableTopics lists the conversation topics exposed to clients. When a
// trained model is loaded its cluster names are used; otherwise the static
// catalog below.
func (c *CentroidClassifier) AvailableTopics() []Info {
	if c.Loaded() {
		out := make([]Info, 0, len(c.clusters))
		for _, cluster := range c.clusters {
			desc := cluster.Name
			if len(cluster.Keywords) > 0 {
				desc = fmt.Sprintf("%s (%v)", cluster.Name, cluster.Keywords)
			}
			out = append(out, Info{Topic: cluster.Name, Description: desc})
		}
		return out
	}
	return StaticCatalog()
}

// StaticCatalog is the built-in topic listing used when no trained model is
// available.
func StaticCatalog() []Info {
	return []Info{
		{Topic: "anxiety", Description: "Anxiety and stress management"},
		{Topic: "depression", Description: "Depression and mood support"},
		{Topic: "relationships", Description: "Relationship challenges"},
		{Topic: "self_esteem", Description: "Self-worth and confidence"},
		{Topic: "work_stress", Description: "Work and career stress"},
		{Topic: "general", Description: "General mental health support"},
	}
}

// Command seeder loads a reference conversation dataset into the vector
// index so retrieval has therapist responses to draw from.
//
// The dataset is a JSON array of records:
//
//	[{"id": "c1", "userMessage": "...", "therapistResponse": "...",
//	  "topic": "anxiety", "emotionalTone": "anxiety"}]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/claritylabs/clarity/backend/internal/config"
	"github.com/claritylabs/clarity/backend/internal/embedding"
	"github.com/claritylabs/clarity/backend/internal/service/retrieval"
	"github.com/claritylabs/clarity/backend/internal/vectorstore"
)

type record struct {
	ID                string `json:"id"`
	UserMessage       string `json:"userMessage"`
	TherapistResponse string `json:"therapistResponse"`
	Topic             string `json:"topic"`
	EmotionalTone     string `json:"emotionalTone"`
}

func main() {
	datasetPath := flag.String("dataset", "data/conversations.json", "path to the conversation dataset")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := run(context.Background(), cfg, *datasetPath); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config, datasetPath string) error {
	raw, err := os.ReadFile(datasetPath)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}
	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("failed to parse dataset: %w", err)
	}

	embedder, err := embedding.NewEngine(cfg.Embedding)
	if err != nil {
		return fmt.Errorf("failed to initialize embedding engine: %w", err)
	}

	index, err := vectorstore.Open(cfg.Store.VectorDBPath)
	if err != nil {
		return err
	}
	defer index.Close()

	seeded := 0
	for i, rec := range records {
		if rec.UserMessage == "" || rec.TherapistResponse == "" {
			log.Printf("skipping record %d: missing message or response", i)
			continue
		}
		id := rec.ID
		if id == "" {
			id = fmt.Sprintf("seed_%d", i)
		}

		vectors, err := embedder.EmbedBatch(ctx, []string{rec.UserMessage, rec.TherapistResponse})
		if err != nil {
			return fmt.Errorf("failed to embed record %s: %w", id, err)
		}

		userMeta := map[string]string{
			retrieval.MetaRole:          retrieval.RoleUserMessage,
			retrieval.MetaTopic:         rec.Topic,
			retrieval.MetaEmotionalTone: rec.EmotionalTone,
		}
		therapistMeta := map[string]string{
			retrieval.MetaRole:          retrieval.RoleTherapistResponse,
			retrieval.MetaTopic:         rec.Topic,
			retrieval.MetaEmotionalTone: rec.EmotionalTone,
		}

		if err := index.Upsert(ctx, id+"_user", vectors[0], rec.UserMessage, userMeta); err != nil {
			return fmt.Errorf("failed to index record %s: %w", id, err)
		}
		if err := index.Upsert(ctx, id+"_therapist", vectors[1], rec.TherapistResponse, therapistMeta); err != nil {
			return fmt.Errorf("failed to index record %s: %w", id, err)
		}
		seeded++
	}

	total, err := index.Count(ctx)
	if err != nil {
		return err
	}
	log.Printf("seeded %d conversations, index now holds %d documents", seeded, total)
	return nil
}

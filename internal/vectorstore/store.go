// Package vectorstore persists embedded documents in SQLite and answers
// filtered nearest-neighbour queries over them.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/claritylabs/clarity/backend/internal/embedding"
)

// Result is a single query hit. Distance follows the index convention:
// distance = 1 - cosine similarity, so 0 means identical.
type Result struct {
	ID       string
	Document string
	Metadata map[string]string
	Distance float64
}

// Filter is an equality filter over document metadata. All pairs must match.
type Filter map[string]string

// Store is a persistent vector index backed by a single SQLite table.
// Writes are serialized by an internal mutex; reads may run concurrently.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id        TEXT PRIMARY KEY,
	document  TEXT NOT NULL,
	embedding TEXT NOT NULL,
	metadata  TEXT NOT NULL DEFAULT '{}'
);
`

// Open opens (creating if necessary) the index at path. Use ":memory:" for
// an ephemeral index.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector index: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize vector index schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert stores (or replaces) a document with its embedding and metadata.
func (s *Store) Upsert(ctx context.Context, id string, vector []float32, document string, metadata map[string]string) error {
	if id == "" {
		return fmt.Errorf("document id is required")
	}

	embeddingJSON, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("failed to serialize embedding: %w", err)
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO documents (id, document, embedding, metadata) VALUES (?, ?, ?, ?)",
		id, document, string(embeddingJSON), string(metaJSON),
	)
	return err
}

// Query returns the topK documents nearest to vector among those whose
// metadata matches filter, ordered by ascending distance.
func (s *Store) Query(ctx context.Context, vector []float32, filter Filter, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = 5
	}

	query, args := buildSelect(filter)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vector index query failed: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var id, document, embeddingJSON, metaJSON string
		if err := rows.Scan(&id, &document, &embeddingJSON, &metaJSON); err != nil {
			continue
		}

		var stored []float32
		if err := json.Unmarshal([]byte(embeddingJSON), &stored); err != nil {
			continue
		}
		similarity, err := embedding.CosineSimilarity(vector, stored)
		if err != nil {
			continue
		}

		var metadata map[string]string
		if err := json.Unmarshal([]byte(metaJSON), &metadata); err != nil {
			metadata = map[string]string{}
		}

		results = append(results, Result{
			ID:       id,
			Document: document,
			Metadata: metadata,
			Distance: 1 - similarity,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteWhere removes every document whose metadata matches filter and
// reports how many were deleted.
func (s *Store) DeleteWhere(ctx context.Context, filter Filter) (int64, error) {
	if len(filter) == 0 {
		return 0, fmt.Errorf("refusing to delete without a filter")
	}

	where, args := buildWhere(filter)

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE "+where, args...)
	if err != nil {
		return 0, fmt.Errorf("vector index delete failed: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func buildSelect(filter Filter) (string, []any) {
	base := "SELECT id, document, embedding, metadata FROM documents"
	if len(filter) == 0 {
		return base, nil
	}
	where, args := buildWhere(filter)
	return base + " WHERE " + where, args
}

// buildWhere translates the metadata filter into json_extract equality
// clauses. Keys are iterated in sorted order so queries are deterministic.
func buildWhere(filter Filter) (string, []any) {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		clauses = append(clauses, "json_extract(metadata, ?) = ?")
		args = append(args, "$."+k, filter[k])
	}
	return strings.Join(clauses, " AND "), args
}

package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndQuery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "a", []float32{1, 0, 0}, "doc a", map[string]string{"role": "therapist-response"}))
	require.NoError(t, s.Upsert(ctx, "b", []float32{0, 1, 0}, "doc b", map[string]string{"role": "therapist-response"}))
	require.NoError(t, s.Upsert(ctx, "c", []float32{1, 0, 0}, "doc c", map[string]string{"role": "user-message"}))

	results, err := s.Query(ctx, []float32{1, 0, 0}, Filter{"role": "therapist-response"}, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "a", results[0].ID)
	assert.InDelta(t, 0.0, results[0].Distance, 1e-6)
	assert.Equal(t, "b", results[1].ID)
	assert.InDelta(t, 1.0, results[1].Distance, 1e-6)
}

func TestQueryTopK(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"one", "two", "three", "four"} {
		vec := []float32{1, float32(i) * 0.1}
		require.NoError(t, s.Upsert(ctx, id, vec, "doc "+id, nil))
	}

	results, err := s.Query(ctx, []float32{1, 0}, nil, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestUpsertReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "a", []float32{1, 0}, "old", nil))
	require.NoError(t, s.Upsert(ctx, "a", []float32{1, 0}, "new", nil))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := s.Query(ctx, []float32{1, 0}, nil, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].Document)
}

func TestDeleteWhere(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "a", []float32{1}, "a", map[string]string{"session_id": "s1"}))
	require.NoError(t, s.Upsert(ctx, "b", []float32{1}, "b", map[string]string{"session_id": "s1"}))
	require.NoError(t, s.Upsert(ctx, "c", []float32{1}, "c", map[string]string{"session_id": "s2"}))

	deleted, err := s.DeleteWhere(ctx, Filter{"session_id": "s1"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteWhereRefusesEmptyFilter(t *testing.T) {
	s := openTestStore(t)

	_, err := s.DeleteWhere(context.Background(), nil)
	assert.Error(t, err)
}

func TestUpsertRequiresID(t *testing.T) {
	s := openTestStore(t)

	err := s.Upsert(context.Background(), "", []float32{1}, "doc", nil)
	assert.Error(t, err)
}

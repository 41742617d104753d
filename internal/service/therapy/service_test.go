package therapy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritylabs/clarity/backend/internal/analysis/emotion"
	"github.com/claritylabs/clarity/backend/internal/analysis/pattern"
	"github.com/claritylabs/clarity/backend/internal/embedding"
	chatmodel "github.com/claritylabs/clarity/backend/internal/model/chat"
	"github.com/claritylabs/clarity/backend/internal/model/therapy"
	chatstore "github.com/claritylabs/clarity/backend/internal/service/chat"
	"github.com/claritylabs/clarity/backend/internal/vectorstore"
)

type fakeGenerator struct {
	response *therapy.Response
	err      error
	calls    int
}

func (g *fakeGenerator) GenerateResponse(_ context.Context, _ string, convCtx *therapy.Context) (*therapy.Response, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	resp := *g.response
	resp.SessionID = convCtx.SessionID
	return &resp, nil
}

type memIndex struct {
	docs map[string]map[string]string // id -> metadata
}

func newMemIndex() *memIndex {
	return &memIndex{docs: make(map[string]map[string]string)}
}

func (m *memIndex) Upsert(_ context.Context, id string, _ []float32, _ string, metadata map[string]string) error {
	m.docs[id] = metadata
	return nil
}

func (m *memIndex) DeleteWhere(_ context.Context, filter vectorstore.Filter) (int64, error) {
	var deleted int64
	for id, meta := range m.docs {
		matches := true
		for k, v := range filter {
			if meta[k] != v {
				matches = false
				break
			}
		}
		if matches {
			delete(m.docs, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memIndex) Count(context.Context) (int, error) { return len(m.docs), nil }

func newTestService(generator Generator, index Index) (*Service, *chatstore.Service) {
	sessions := chatstore.NewService()
	svc := NewService(
		pattern.NewDetector(pattern.DefaultCatalog()),
		emotion.NewClassifier(),
		nil,
		nil,
		generator,
		sessions,
		index,
		embedding.NewHashEngine(32),
		nil,
		Options{},
	)
	return svc, sessions
}

func TestProcessMessageGenerationFailureFallsBack(t *testing.T) {
	svc, sessions := newTestService(&fakeGenerator{err: errors.New("model offline")}, newMemIndex())

	resp, err := svc.ProcessMessage(context.Background(), "s1", "I'm anxious about everything", nil)
	require.NoError(t, err)

	assert.Equal(t, FallbackContent, resp.Content)
	assert.Equal(t, FallbackConfidence, resp.ConfidenceScore)
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, "anxiety", resp.EmotionalState)
	assert.Equal(t, "unknown", resp.TopicClassification)
	assert.NotNil(t, resp.Suggestions)

	// Both turns are persisted even on fallback.
	history, err := sessions.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, chatmodel.RoleUser, history[0].Role)
	assert.Equal(t, chatmodel.RoleAssistant, history[1].Role)
	assert.Equal(t, FallbackContent, history[1].Content)
}

func TestProcessMessageNilGeneratorFallsBack(t *testing.T) {
	svc, _ := newTestService(nil, newMemIndex())

	resp, err := svc.ProcessMessage(context.Background(), "s1", "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackContent, resp.Content)
	assert.Equal(t, FallbackConfidence, resp.ConfidenceScore)
}

func TestProcessMessageUsesGeneratedResponse(t *testing.T) {
	gen := &fakeGenerator{response: &therapy.Response{
		Content:         "That sounds really difficult.",
		ConfidenceScore: 0.7,
		EmotionalState:  "anxiety",
	}}
	svc, sessions := newTestService(gen, newMemIndex())

	resp, err := svc.ProcessMessage(context.Background(), "s1", "I'm worried about work", nil)
	require.NoError(t, err)
	assert.Equal(t, "That sounds really difficult.", resp.Content)
	assert.Equal(t, 1, gen.calls)

	history, err := sessions.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "I'm worried about work", history[0].Content)
	assert.InDelta(t, 1.0, history[0].Confidence, 1e-9)
	assert.InDelta(t, 0.7, history[1].Confidence, 1e-9)
}

func TestProcessMessageIndexesUserTurn(t *testing.T) {
	index := newMemIndex()
	svc, _ := newTestService(nil, index)

	_, err := svc.ProcessMessage(context.Background(), "s1", "I always mess everything up, complete disaster", nil)
	require.NoError(t, err)

	require.Len(t, index.docs, 1)
	for _, meta := range index.docs {
		assert.Equal(t, "user-message", meta["role"])
		assert.Equal(t, "s1", meta["session_id"])
		assert.Equal(t, "negative", meta["emotional_tone"])
	}
}

func TestProcessMessageRequiresSessionID(t *testing.T) {
	svc, _ := newTestService(nil, newMemIndex())

	_, err := svc.ProcessMessage(context.Background(), "", "hello", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, chatstore.ErrSessionRequired)
}

func TestDeleteSessionRemovesVectors(t *testing.T) {
	index := newMemIndex()
	svc, _ := newTestService(nil, index)
	ctx := context.Background()

	_, err := svc.ProcessMessage(ctx, "s1", "first message", nil)
	require.NoError(t, err)
	_, err = svc.ProcessMessage(ctx, "s2", "other session", nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, "s1"))

	count, _ := index.Count(ctx)
	assert.Equal(t, 1, count)

	_, err = svc.SessionHistory(ctx, "s1")
	assert.ErrorIs(t, err, chatstore.ErrSessionNotFound)
}

func TestDeleteSessionUnknown(t *testing.T) {
	svc, _ := newTestService(nil, newMemIndex())

	err := svc.DeleteSession(context.Background(), "missing")
	assert.ErrorIs(t, err, chatstore.ErrSessionNotFound)
}

func TestAnalyzeReturnsSignalsAndInterventions(t *testing.T) {
	svc, _ := newTestService(nil, newMemIndex())

	analysis := svc.Analyze(context.Background(), "I'm so anxious, everything is always a complete disaster")

	assert.Equal(t, "anxiety", analysis.Emotion.Primary)
	assert.Equal(t, "unknown", analysis.Topic.Name)
	assert.NotEmpty(t, analysis.Patterns)
	assert.NotEmpty(t, analysis.Interventions)
}

func TestAddConversationSeedsBothTurns(t *testing.T) {
	index := newMemIndex()
	svc, _ := newTestService(nil, index)

	err := svc.AddConversation(context.Background(), "conv1",
		"I feel like a failure", "It takes courage to share that.",
		map[string]string{"topic": "self_esteem"})
	require.NoError(t, err)

	require.Len(t, index.docs, 2)
	assert.Equal(t, "user-message", index.docs["conv1_user"]["role"])
	assert.Equal(t, "therapist-response", index.docs["conv1_therapist"]["role"])
	assert.Equal(t, "self_esteem", index.docs["conv1_therapist"]["topic"])
}

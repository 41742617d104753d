// Package therapy orchestrates the per-message pipeline: signal detection,
// retrieval fusion, response generation and persistence.
package therapy

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claritylabs/clarity/backend/internal/analysis/emotion"
	"github.com/claritylabs/clarity/backend/internal/analysis/pattern"
	"github.com/claritylabs/clarity/backend/internal/analysis/topic"
	"github.com/claritylabs/clarity/backend/internal/embedding"
	"github.com/claritylabs/clarity/backend/internal/logger"
	chatmodel "github.com/claritylabs/clarity/backend/internal/model/chat"
	"github.com/claritylabs/clarity/backend/internal/model/therapy"
	chatstore "github.com/claritylabs/clarity/backend/internal/service/chat"
	"github.com/claritylabs/clarity/backend/internal/service/retrieval"
	"github.com/claritylabs/clarity/backend/internal/vectorstore"
)

// FallbackContent is the fixed reply used when generation is unavailable.
const FallbackContent = "I hear you, and I want you to know that your feelings are valid. " +
	"Sometimes it helps to take a moment to breathe and acknowledge what you're experiencing. " +
	"Would you like to share more about what's on your mind right now?"

// FallbackConfidence marks a degraded, context-free reply.
const FallbackConfidence = 0.3

const defaultHistoryLimit = 10

// Generator produces the therapeutic reply for an assembled context. It may
// fail; the orchestrator recovers with the fixed fallback.
type Generator interface {
	GenerateResponse(ctx context.Context, userMessage string, convCtx *therapy.Context) (*therapy.Response, error)
}

// Retriever supplies ranked reference candidates for a message.
type Retriever interface {
	Retrieve(ctx context.Context, queryText, topicName, emotionLabel string) []therapy.Candidate
}

// Index is the slice of the vector store the orchestrator writes to.
type Index interface {
	Upsert(ctx context.Context, id string, vector []float32, document string, metadata map[string]string) error
	DeleteWhere(ctx context.Context, filter vectorstore.Filter) (int64, error)
	Count(ctx context.Context) (int, error)
}

// Service sequences the message pipeline.
type Service struct {
	patterns   *pattern.Detector
	emotions   *emotion.Classifier
	topics     topic.Classifier
	retriever  Retriever
	generator  Generator
	sessions   chatstore.Store
	index      Index
	embedder   embedding.Engine
	log        *logger.Logger
	historyLen int
}

// Options carries optional orchestrator settings.
type Options struct {
	HistoryLimit int
}

// NewService wires the orchestrator. generator may be nil, in which case
// every reply is the fixed fallback.
func NewService(
	patterns *pattern.Detector,
	emotions *emotion.Classifier,
	topics topic.Classifier,
	retriever Retriever,
	generator Generator,
	sessions chatstore.Store,
	index Index,
	embedder embedding.Engine,
	log *logger.Logger,
	opts Options,
) *Service {
	historyLen := opts.HistoryLimit
	if historyLen <= 0 {
		historyLen = defaultHistoryLimit
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		patterns:   patterns,
		emotions:   emotions,
		topics:     topics,
		retriever:  retriever,
		generator:  generator,
		sessions:   sessions,
		index:      index,
		embedder:   embedder,
		log:        log,
		historyLen: historyLen,
	}
}

// ProcessMessage runs the full pipeline for one inbound message. Detector,
// retrieval and generation failures degrade to their documented defaults;
// persistence failures abort the request.
func (s *Service) ProcessMessage(ctx context.Context, sessionID, content string, userContext map[string]any) (*therapy.Response, error) {
	if _, err := s.sessions.EnsureSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to ensure session %s: %w", sessionID, err)
	}

	// The two detectors are pure functions of the text and have no ordering
	// dependency; run them side by side.
	var (
		wg       sync.WaitGroup
		detected []pattern.Detected
		profile  = emotion.Neutral()
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer s.recoverStage("pattern detection", sessionID)
		detected = s.patterns.Detect(content)
	}()
	go func() {
		defer wg.Done()
		defer s.recoverStage("emotion classification", sessionID)
		profile = s.emotions.Classify(content)
	}()
	wg.Wait()

	classification := topic.Unknown()
	if s.topics != nil {
		classification = s.topics.Classify(ctx, content)
	}

	var candidates []therapy.Candidate
	if s.retriever != nil {
		candidates = s.retriever.Retrieve(ctx, content, classification.Name, profile.Primary)
	}

	history, err := s.sessions.RecentMessages(ctx, sessionID, s.historyLen)
	if err != nil {
		s.log.Warn("history window unavailable", "session", sessionID, "error", err)
		history = nil
	}

	convCtx := &therapy.Context{
		SessionID:   sessionID,
		Timestamp:   time.Now().UTC(),
		Patterns:    detected,
		Emotion:     profile,
		Topic:       classification,
		Candidates:  candidates,
		History:     history,
		UserContext: userContext,
	}

	response := s.generate(ctx, content, convCtx)

	if err := s.persistTurns(ctx, sessionID, content, convCtx, response); err != nil {
		return nil, err
	}
	s.indexUserTurn(ctx, sessionID, content, convCtx)

	return response, nil
}

func (s *Service) generate(ctx context.Context, content string, convCtx *therapy.Context) *therapy.Response {
	if s.generator != nil {
		response, err := s.generator.GenerateResponse(ctx, content, convCtx)
		if err == nil {
			return response
		}
		s.log.Warn("generation failed, using fallback", "session", convCtx.SessionID, "error", err)
	}
	return fallbackResponse(convCtx)
}

func fallbackResponse(convCtx *therapy.Context) *therapy.Response {
	return &therapy.Response{
		Content:             FallbackContent,
		SessionID:           convCtx.SessionID,
		Timestamp:           convCtx.Timestamp,
		ConfidenceScore:     FallbackConfidence,
		EmotionalState:      convCtx.Emotion.Primary,
		TopicClassification: convCtx.Topic.Name,
		Suggestions:         []string{},
	}
}

func (s *Service) persistTurns(ctx context.Context, sessionID, content string, convCtx *therapy.Context, response *therapy.Response) error {
	userTurn := chatmodel.Message{
		SessionID:  sessionID,
		Role:       chatmodel.RoleUser,
		Content:    content,
		Emotion:    convCtx.Emotion.Primary,
		Topic:      convCtx.Topic.Name,
		Patterns:   patternKeys(convCtx.Patterns),
		Confidence: 1.0,
	}
	if _, err := s.sessions.AppendMessage(ctx, userTurn); err != nil {
		return fmt.Errorf("failed to persist user turn: %w", err)
	}

	assistantTurn := chatmodel.Message{
		SessionID:  sessionID,
		Role:       chatmodel.RoleAssistant,
		Content:    response.Content,
		Emotion:    response.EmotionalState,
		Topic:      response.TopicClassification,
		Confidence: response.ConfidenceScore,
	}
	if _, err := s.sessions.AppendMessage(ctx, assistantTurn); err != nil {
		return fmt.Errorf("failed to persist assistant turn: %w", err)
	}
	return nil
}

// indexUserTurn appends the user turn to the vector index so later messages
// in the session can retrieve it. Index failures degrade: the reply has
// already been persisted and returned.
func (s *Service) indexUserTurn(ctx context.Context, sessionID, content string, convCtx *therapy.Context) {
	if s.index == nil || s.embedder == nil {
		return
	}

	vector, err := s.embedder.Embed(ctx, content)
	if err != nil {
		s.log.Warn("user turn embedding failed", "session", sessionID, "error", err)
		return
	}

	metadata := map[string]string{
		retrieval.MetaRole:          retrieval.RoleUserMessage,
		retrieval.MetaSessionID:     sessionID,
		retrieval.MetaTopic:         convCtx.Topic.Name,
		retrieval.MetaEmotionalTone: convCtx.Emotion.Primary,
		retrieval.MetaPatterns:      strings.Join(patternKeys(convCtx.Patterns), ","),
	}
	id := fmt.Sprintf("%s_%s", sessionID, uuid.NewString())
	if err := s.index.Upsert(ctx, id, vector, content, metadata); err != nil {
		s.log.Warn("user turn indexing failed", "session", sessionID, "error", err)
	}
}

func patternKeys(detected []pattern.Detected) []string {
	keys := make([]string, 0, len(detected))
	for _, p := range detected {
		keys = append(keys, p.Key())
	}
	return keys
}

func (s *Service) recoverStage(stage, sessionID string) {
	if r := recover(); r != nil {
		s.log.Error("stage panicked, degraded to default", "stage", stage, "session", sessionID, "panic", r)
	}
}

// SessionHistory returns the ordered transcript plus counts for the session.
func (s *Service) SessionHistory(ctx context.Context, sessionID string) ([]chatmodel.Message, error) {
	return s.sessions.History(ctx, sessionID)
}

// DeleteSession removes the session rows and every vector-index document
// belonging to it.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	if s.index != nil {
		if _, err := s.index.DeleteWhere(ctx, vectorstore.Filter{retrieval.MetaSessionID: sessionID}); err != nil {
			return fmt.Errorf("failed to delete session vectors: %w", err)
		}
	}
	return nil
}

// Analysis is the signal readout for one message, without generation.
type Analysis struct {
	Patterns      []pattern.Detected     `json:"patterns"`
	Emotion       emotion.Profile        `json:"emotion"`
	Topic         topic.Classification   `json:"topic"`
	Interventions []pattern.Intervention `json:"interventions"`
}

// Analyze runs the detection stages only. Useful for clients that want the
// signal readout without a generated reply; nothing is persisted.
func (s *Service) Analyze(ctx context.Context, text string) Analysis {
	detected := s.patterns.Detect(text)
	profile := s.emotions.Classify(text)

	classification := topic.Unknown()
	if s.topics != nil {
		classification = s.topics.Classify(ctx, text)
	}

	return Analysis{
		Patterns:      detected,
		Emotion:       profile,
		Topic:         classification,
		Interventions: pattern.SuggestInterventions(detected, profile),
	}
}

// TopicLister is implemented by classifiers that can enumerate their topics.
type TopicLister interface {
	AvailableTopics() []topic.Info
}

// AvailableTopics lists the topics the classifier can assign.
func (s *Service) AvailableTopics() []topic.Info {
	if lister, ok := s.topics.(TopicLister); ok {
		return lister.AvailableTopics()
	}
	return topic.StaticCatalog()
}

// IndexedDocuments reports the vector index size for the stats endpoint.
func (s *Service) IndexedDocuments(ctx context.Context) int {
	if s.index == nil {
		return 0
	}
	n, err := s.index.Count(ctx)
	if err != nil {
		s.log.Warn("index count failed", "error", err)
		return 0
	}
	return n
}

// AddConversation seeds one reference conversation (a user message and the
// therapist response) into the vector index.
func (s *Service) AddConversation(ctx context.Context, conversationID, userMessage, therapistResponse string, metadata map[string]string) error {
	if s.index == nil || s.embedder == nil {
		return fmt.Errorf("vector index unavailable")
	}

	vectors, err := s.embedder.EmbedBatch(ctx, []string{userMessage, therapistResponse})
	if err != nil {
		return fmt.Errorf("failed to embed conversation %s: %w", conversationID, err)
	}

	userMeta := map[string]string{retrieval.MetaRole: retrieval.RoleUserMessage}
	therapistMeta := map[string]string{retrieval.MetaRole: retrieval.RoleTherapistResponse}
	for k, v := range metadata {
		userMeta[k] = v
		therapistMeta[k] = v
	}

	if err := s.index.Upsert(ctx, conversationID+"_user", vectors[0], userMessage, userMeta); err != nil {
		return err
	}
	return s.index.Upsert(ctx, conversationID+"_therapist", vectors[1], therapistResponse, therapistMeta)
}

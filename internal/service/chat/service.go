package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claritylabs/clarity/backend/internal/model/chat"
)

var (
	ErrSessionRequired = errors.New("session id is required")
	ErrSessionNotFound = errors.New("session not found")
)

// Store is the session persistence contract the orchestrator depends on.
// Implementations must serialize writes per session so concurrent messages
// on different sessions never interleave one session's history.
type Store interface {
	// EnsureSession creates the session if absent and returns it. Idempotent.
	EnsureSession(ctx context.Context, sessionID string) (chat.Session, error)
	// AppendMessage appends a turn to the session history.
	AppendMessage(ctx context.Context, message chat.Message) (chat.Message, error)
	// RecentMessages returns up to limit most recent turns in chronological
	// order.
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]chat.Message, error)
	// History returns the full ordered transcript.
	History(ctx context.Context, sessionID string) ([]chat.Message, error)
	// DeleteSession removes the session and its messages.
	DeleteSession(ctx context.Context, sessionID string) error
}

// Service is the in-memory Store implementation.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	messages map[string][]chat.Message
}

// NewService bootstraps the in-memory session store.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]chat.Message),
	}
}

// EnsureSession creates the session keyed by sessionID if it does not exist
// yet and returns it.
func (s *Service) EnsureSession(_ context.Context, sessionID string) (chat.Session, error) {
	if sessionID == "" {
		return chat.Session{}, ErrSessionRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[sessionID]; ok {
		return session, nil
	}

	session := chat.Session{
		ID:        sessionID,
		UserID:    "anonymous",
		CreatedAt: time.Now().UTC(),
	}
	s.sessions[sessionID] = session
	s.messages[sessionID] = make([]chat.Message, 0, 16)
	return session, nil
}

// AppendMessage appends a turn to the session history and returns the stored
// message with its assigned id and timestamp.
func (s *Service) AppendMessage(_ context.Context, message chat.Message) (chat.Message, error) {
	if message.SessionID == "" {
		return chat.Message{}, ErrSessionRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[message.SessionID]; !ok {
		return chat.Message{}, ErrSessionNotFound
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	s.messages[message.SessionID] = append(s.messages[message.SessionID], message)
	return message, nil
}

// RecentMessages returns up to limit most recent turns, oldest first.
func (s *Service) RecentMessages(_ context.Context, sessionID string, limit int) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// History returns the full ordered transcript for the session.
func (s *Service) History(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// DeleteSession removes the session and all its messages.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	delete(s.messages, sessionID)
	return nil
}

// Stats reports the number of sessions and stored messages.
func (s *Service) Stats() (sessions, messages int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions = len(s.sessions)
	for _, msgs := range s.messages {
		messages += len(msgs)
	}
	return sessions, messages
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

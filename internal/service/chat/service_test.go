package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/claritylabs/clarity/backend/internal/model/chat"
)

func TestEnsureSessionIdempotent(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	first, err := svc.EnsureSession(ctx, "session-1")
	if err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}
	second, err := svc.EnsureSession(ctx, "session-1")
	if err != nil {
		t.Fatalf("EnsureSession failed on repeat: %v", err)
	}
	if first.CreatedAt != second.CreatedAt {
		t.Fatalf("expected the same session, got different created times")
	}
}

func TestEnsureSessionRequiresID(t *testing.T) {
	svc := NewService()

	if _, err := svc.EnsureSession(context.Background(), ""); !errors.Is(err, ErrSessionRequired) {
		t.Fatalf("expected ErrSessionRequired, got %v", err)
	}
}

func TestAppendMessageUnknownSession(t *testing.T) {
	svc := NewService()

	_, err := svc.AppendMessage(context.Background(), chat.Message{SessionID: "missing", Role: chat.RoleUser, Content: "hi"})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAppendAndHistory(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	if _, err := svc.EnsureSession(ctx, "s1"); err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}

	stored, err := svc.AppendMessage(ctx, chat.Message{SessionID: "s1", Role: chat.RoleUser, Content: "hello"})
	if err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if stored.ID == "" {
		t.Fatal("expected an assigned message id")
	}
	if stored.CreatedAt.IsZero() {
		t.Fatal("expected an assigned timestamp")
	}

	if _, err := svc.AppendMessage(ctx, chat.Message{SessionID: "s1", Role: chat.RoleAssistant, Content: "hi there"}); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	history, err := svc.History(ctx, "s1")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Role != chat.RoleUser || history[1].Role != chat.RoleAssistant {
		t.Fatalf("history out of order: %+v", history)
	}
}

func TestRecentMessagesWindow(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	if _, err := svc.EnsureSession(ctx, "s1"); err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := svc.AppendMessage(ctx, chat.Message{SessionID: "s1", Role: chat.RoleUser, Content: "msg"}); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	recent, err := svc.RecentMessages(ctx, "s1", 3)
	if err != nil {
		t.Fatalf("RecentMessages failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(recent))
	}
}

func TestDeleteSession(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	if _, err := svc.EnsureSession(ctx, "s1"); err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}
	if err := svc.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.History(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
	if err := svc.DeleteSession(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on repeat delete, got %v", err)
	}
}

func TestStats(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if _, err := svc.EnsureSession(ctx, id); err != nil {
			t.Fatalf("EnsureSession failed: %v", err)
		}
		if _, err := svc.AppendMessage(ctx, chat.Message{SessionID: id, Role: chat.RoleUser, Content: "hi"}); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	sessions, messages := svc.Stats()
	if sessions != 2 || messages != 2 {
		t.Fatalf("expected 2 sessions and 2 messages, got %d and %d", sessions, messages)
	}
}

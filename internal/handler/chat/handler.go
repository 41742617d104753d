package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	chatservice "github.com/claritylabs/clarity/backend/internal/service/chat"
	therapyservice "github.com/claritylabs/clarity/backend/internal/service/therapy"
	"github.com/claritylabs/clarity/backend/pkg/utils"
)

// Handler exposes the conversation pipeline over REST.
type Handler struct {
	therapySvc *therapyservice.Service
	chatSvc    *chatservice.Service
}

// New creates the chat handler.
func New(therapySvc *therapyservice.Service, chatSvc *chatservice.Service) *Handler {
	return &Handler{therapySvc: therapySvc, chatSvc: chatSvc}
}

// RegisterRoutes mounts the conversation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/analyze", h.handleAnalyze)
	r.Get("/session/{sessionID}/history", h.handleHistory)
	r.Delete("/session/{sessionID}", h.handleDeleteSession)
	r.Get("/topics", h.handleTopics)
	r.Get("/health", h.handleHealth)
	r.Get("/stats", h.handleStats)
}

type chatRequest struct {
	Message     string         `json:"message"`
	SessionID   string         `json:"sessionId"`
	UserContext map[string]any `json:"userContext,omitempty"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionID := payload.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	response, err := h.therapySvc.ProcessMessage(r.Context(), sessionID, payload.Message, payload.UserContext)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	utils.RespondJSON(w, http.StatusOK, response)
}

type analyzeRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	utils.RespondJSON(w, http.StatusOK, h.therapySvc.Analyze(r.Context(), payload.Text))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	history, err := h.therapySvc.SessionHistory(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, chatservice.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId":    sessionID,
		"history":      history,
		"messageCount": len(history),
	})
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.therapySvc.DeleteSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, chatservice.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "deleted",
		"sessionId": sessionID,
	})
}

func (h *Handler) handleTopics(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"topics": h.therapySvc.AvailableTopics(),
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "clarity-backend",
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	sessions, messages := h.chatSvc.Stats()
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"activeSessions":   sessions,
		"totalMessages":    messages,
		"indexedDocuments": h.therapySvc.IndexedDocuments(r.Context()),
	})
}

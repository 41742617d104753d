// Package ws carries the conversation over a WebSocket connection so clients
// get typing indicators while the pipeline runs.
package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/claritylabs/clarity/backend/internal/logger"
	therapyservice "github.com/claritylabs/clarity/backend/internal/service/therapy"
)

// Handler upgrades connections and relays messages through the pipeline.
type Handler struct {
	therapySvc *therapyservice.Service
	upgrader   websocket.Upgrader
	log        *logger.Logger
}

// New creates the WebSocket handler.
func New(therapySvc *therapyservice.Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		therapySvc: therapySvc,
		log:        log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the WebSocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type        string         `json:"type"`
	Content     string         `json:"content"`
	UserContext map[string]any `json:"userContext,omitempty"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	IsTyping  bool        `json:"isTyping,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "session id required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "session", sessionID, "error", err)
		return
	}
	defer conn.Close()

	h.log.Info("websocket connected", "session", sessionID)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read failed", "session", sessionID, "error", err)
			}
			return
		}

		switch inbound.Type {
		case "message":
			h.handleChatMessage(conn, r, sessionID, inbound)
		case "ping":
			h.send(conn, outgoingMessage{Type: "pong", Timestamp: time.Now().UnixMilli()})
		default:
			h.send(conn, outgoingMessage{
				Type:      "error",
				Message:   "unknown message type: " + inbound.Type,
				Timestamp: time.Now().UnixMilli(),
			})
		}
	}
}

func (h *Handler) handleChatMessage(conn *websocket.Conn, r *http.Request, sessionID string, inbound inboundMessage) {
	if strings.TrimSpace(inbound.Content) == "" {
		h.send(conn, outgoingMessage{
			Type:      "error",
			SessionID: sessionID,
			Message:   "message content is required",
			Timestamp: time.Now().UnixMilli(),
		})
		return
	}

	h.send(conn, outgoingMessage{
		Type:      "typing",
		SessionID: sessionID,
		IsTyping:  true,
		Timestamp: time.Now().UnixMilli(),
	})

	response, err := h.therapySvc.ProcessMessage(r.Context(), sessionID, inbound.Content, inbound.UserContext)

	h.send(conn, outgoingMessage{
		Type:      "typing",
		SessionID: sessionID,
		IsTyping:  false,
		Timestamp: time.Now().UnixMilli(),
	})

	if err != nil {
		h.log.Warn("websocket message processing failed", "session", sessionID, "error", err)
		h.send(conn, outgoingMessage{
			Type:      "error",
			SessionID: sessionID,
			Message:   "failed to process message",
			Timestamp: time.Now().UnixMilli(),
		})
		return
	}

	h.send(conn, outgoingMessage{
		Type:      "chat_response",
		SessionID: sessionID,
		Data:      response,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (h *Handler) send(conn *websocket.Conn, msg outgoingMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal websocket message", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		h.log.Warn("websocket write failed", "error", err)
	}
}

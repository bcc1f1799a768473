package webchat

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/wolfman30/barbershop-concierge/internal/conversation"
	"github.com/wolfman30/barbershop-concierge/internal/extract"
	"github.com/wolfman30/barbershop-concierge/pkg/logging"
)

// Handler serves the chat service over a WebSocket.
type Handler struct {
	service conversation.Service
	logger  *logging.Logger
}

// InboundMessage is what the browser sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send back.
type OutboundMessage struct {
	Type          string          `json:"type"` // "session", "message", "typing", "pong", "error"
	Text          string          `json:"text,omitempty"`
	SessionID     string          `json:"session_id,omitempty"`
	ExtractedInfo *extract.Fields `json:"extracted_info,omitempty"`
	Timestamp     string          `json:"timestamp,omitempty"`
}

// NewHandler creates a web chat handler.
func NewHandler(service conversation.Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("webchat: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and answers each frame independently.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}
	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sessionID})

	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		switch msg.Type {
		case "ping":
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
		case "message":
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "typing"})
			_ = websocket.JSON.Send(conn, h.reply(r, sessionID, msg.Text))
		default:
			h.logger.Debug("webchat: ignoring frame", "type", msg.Type)
		}
	}
}

func (h *Handler) reply(r *http.Request, sessionID, text string) OutboundMessage {
	resp, err := h.service.Reply(r.Context(), text)
	if err != nil {
		if errors.Is(err, conversation.ErrEmptyMessage) {
			return OutboundMessage{Type: "error", Text: "No message provided"}
		}
		h.logger.Error("webchat: reply failed", "session_id", sessionID, "error", err)
		return OutboundMessage{Type: "error", Text: "Something went wrong. Please try again."}
	}
	extracted := resp.Extracted
	return OutboundMessage{
		Type:          "message",
		Text:          resp.Reply,
		ExtractedInfo: &extracted,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
}

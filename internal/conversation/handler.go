package conversation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/barbershop-concierge/internal/appointments"
	"github.com/wolfman30/barbershop-concierge/internal/extract"
	"github.com/wolfman30/barbershop-concierge/pkg/logging"
)

const noMessageError = "No message provided"

// Handler wires HTTP requests to the chat service.
type Handler struct {
	service Service
	repo    appointments.Repository
	llmURL  string
	logger  *logging.Logger
}

// NewHandler creates a chat handler. llmURL is reported by the health check.
func NewHandler(service Service, repo appointments.Repository, llmURL string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		repo:    repo,
		llmURL:  llmURL,
		logger:  logger,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat handles POST /api/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("failed to decode chat request", "error", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": noMessageError})
		return
	}

	resp, err := h.service.Reply(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": noMessageError})
			return
		}
		h.logger.Error("failed to process chat message", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to process message"})
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Appointments handles GET /api/appointments.
func (h *Handler) Appointments(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to list appointments"})
		return
	}
	if records == nil {
		records = []extract.Fields{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"appointments": records})
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"llm_url": h.llmURL,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}

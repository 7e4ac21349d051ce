package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/flourish/internal/assistant"
	"github.com/dukerupert/flourish/internal/auth"
)

type ChatHandler struct {
	assistant *assistant.Service
	logger    *slog.Logger
}

func NewChatHandler(svc *assistant.Service, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{assistant: svc, logger: logger}
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat sends one message to the assistant. Completion failures still
// return 200 with a fallback reply; only a missing API key is an error.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	if !h.assistant.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "chat is not configured"})
		return
	}

	reply := h.assistant.Chat(r.Context(), auth.UserID(r.Context()), req.Message)
	writeJSON(w, http.StatusOK, reply)
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	messages, err := h.assistant.History(auth.UserID(r.Context()), parseLimit(r, 50))
	if err != nil {
		h.logger.Error("chat history", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load history"})
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

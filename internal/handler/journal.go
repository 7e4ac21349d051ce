package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/flourish/internal/auth"
	"github.com/dukerupert/flourish/internal/insight"
	"github.com/dukerupert/flourish/internal/store"
	"github.com/dukerupert/flourish/internal/websocket"
)

type JournalHandler struct {
	journalStore *store.JournalStore
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewJournalHandler(js *store.JournalStore, hub *websocket.Hub, logger *slog.Logger) *JournalHandler {
	return &JournalHandler{journalStore: js, hub: hub, logger: logger}
}

type journalRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

func (r *journalRequest) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	if r.Title == "" {
		return "title is required"
	}
	if r.Content == "" {
		return "content is required"
	}
	return ""
}

func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req journalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	userID := auth.UserID(r.Context())
	entry, err := h.journalStore.Create(userID, req.Title, req.Content, req.Category, req.Tags,
		insight.Sentiment(req.Content), insight.WordCount(req.Content), insight.ReadingTime(req.Content))
	if err != nil {
		h.logger.Error("create journal entry", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create entry"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("journal", "created", entry.ID, nil))
	writeJSON(w, http.StatusCreated, entry)
}

func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.journalStore.List(auth.UserID(r.Context()), parseLimit(r, 50))
	if err != nil {
		h.logger.Error("list journal entries", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list entries"})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry ID"})
		return
	}

	entry, err := h.journalStore.GetByID(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get journal entry", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get entry"})
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "entry not found"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *JournalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry ID"})
		return
	}

	var req journalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	userID := auth.UserID(r.Context())
	entry, err := h.journalStore.Update(id, userID, req.Title, req.Content, req.Category, req.Tags,
		insight.Sentiment(req.Content), insight.WordCount(req.Content), insight.ReadingTime(req.Content))
	if err != nil {
		h.logger.Error("update journal entry", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update entry"})
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "entry not found"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("journal", "updated", entry.ID, nil))
	writeJSON(w, http.StatusOK, entry)
}

func (h *JournalHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry ID"})
		return
	}

	userID := auth.UserID(r.Context())
	entry, err := h.journalStore.ToggleFavorite(id, userID)
	if err != nil {
		h.logger.Error("toggle favorite", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update entry"})
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "entry not found"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("journal", "updated", entry.ID, nil))
	writeJSON(w, http.StatusOK, entry)
}

func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry ID"})
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.journalStore.Delete(id, userID); err != nil {
		h.logger.Error("delete journal entry", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete entry"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("journal", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

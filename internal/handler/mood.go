package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/flourish/internal/auth"
	"github.com/dukerupert/flourish/internal/store"
	"github.com/dukerupert/flourish/internal/websocket"
)

type MoodHandler struct {
	moodStore *store.MoodStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewMoodHandler(ms *store.MoodStore, hub *websocket.Hub, logger *slog.Logger) *MoodHandler {
	return &MoodHandler{moodStore: ms, hub: hub, logger: logger}
}

type moodRequest struct {
	Mood      string   `json:"mood"`
	Reason    string   `json:"reason"`
	Intensity int      `json:"intensity"`
	Energy    int      `json:"energy"`
	Tags      []string `json:"tags"`
	Location  string   `json:"location"`
}

func (h *MoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req moodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Mood = strings.TrimSpace(req.Mood)
	if req.Mood == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mood is required"})
		return
	}
	if req.Intensity == 0 {
		req.Intensity = 5
	}
	if req.Energy == 0 {
		req.Energy = 5
	}
	if req.Intensity < 1 || req.Intensity > 10 || req.Energy < 1 || req.Energy > 10 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "intensity and energy must be between 1 and 10"})
		return
	}

	userID := auth.UserID(r.Context())
	m, err := h.moodStore.Create(userID, req.Mood, req.Reason, req.Intensity, req.Energy, req.Tags, req.Location)
	if err != nil {
		h.logger.Error("create mood", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create mood"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("mood", "created", m.ID, nil))
	writeJSON(w, http.StatusCreated, m)
}

func (h *MoodHandler) List(w http.ResponseWriter, r *http.Request) {
	moods, err := h.moodStore.List(auth.UserID(r.Context()), parseLimit(r, 50))
	if err != nil {
		h.logger.Error("list moods", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list moods"})
		return
	}
	writeJSON(w, http.StatusOK, moods)
}

func (h *MoodHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid mood ID"})
		return
	}

	m, err := h.moodStore.GetByID(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get mood", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get mood"})
		return
	}
	if m == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "mood not found"})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MoodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid mood ID"})
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.moodStore.Delete(id, userID); err != nil {
		h.logger.Error("delete mood", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete mood"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("mood", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func broadcast(hub *websocket.Hub, userID int64, msg websocket.Message) {
	if hub != nil {
		hub.Notify(userID, msg)
	}
}

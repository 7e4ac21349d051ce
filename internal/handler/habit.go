package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/flourish/internal/auth"
	"github.com/dukerupert/flourish/internal/model"
	"github.com/dukerupert/flourish/internal/store"
	"github.com/dukerupert/flourish/internal/websocket"
)

type HabitHandler struct {
	habitStore *store.HabitStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewHabitHandler(hs *store.HabitStore, hub *websocket.Hub, logger *slog.Logger) *HabitHandler {
	return &HabitHandler{habitStore: hs, hub: hub, logger: logger}
}

type habitRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	TargetFrequency string `json:"target_frequency"`
	IsActive        *bool  `json:"is_active"`
}

func (r *habitRequest) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return "name is required"
	}
	if r.TargetFrequency == "" {
		r.TargetFrequency = "daily"
	}
	return ""
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req habitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	userID := auth.UserID(r.Context())
	habit, err := h.habitStore.Create(userID, req.Name, req.Description, req.Category, req.TargetFrequency)
	if err != nil {
		h.logger.Error("create habit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create habit"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("habit", "created", habit.ID, nil))
	writeJSON(w, http.StatusCreated, habit)
}

func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	habits, err := h.habitStore.List(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list habits", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list habits"})
		return
	}
	writeJSON(w, http.StatusOK, habits)
}

func (h *HabitHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid habit ID"})
		return
	}

	habit, err := h.habitStore.GetByID(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get habit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get habit"})
		return
	}
	if habit == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "habit not found"})
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid habit ID"})
		return
	}

	var req habitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	userID := auth.UserID(r.Context())
	habit, err := h.habitStore.Update(id, userID, req.Name, req.Description, req.Category, req.TargetFrequency, isActive)
	if err != nil {
		h.logger.Error("update habit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update habit"})
		return
	}
	if habit == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "habit not found"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("habit", "updated", habit.ID, nil))
	writeJSON(w, http.StatusOK, habit)
}

type completeHabitRequest struct {
	Rating int    `json:"rating"`
	Notes  string `json:"notes"`
}

type completeHabitResponse struct {
	Habit            *model.Habit `json:"habit"`
	AlreadyCompleted bool         `json:"already_completed"`
}

// Complete records today's completion and advances the streak. Completing
// a habit twice on the same day is not an error; the response carries
// already_completed instead.
func (h *HabitHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid habit ID"})
		return
	}

	var req completeHabitRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
			return
		}
	}
	if req.Rating == 0 {
		req.Rating = 5
	}
	if req.Rating < 1 || req.Rating > 10 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rating must be between 1 and 10"})
		return
	}

	userID := auth.UserID(r.Context())
	habit, err := h.habitStore.Complete(id, userID, req.Rating, req.Notes, time.Now())
	if errors.Is(err, store.ErrAlreadyCompletedToday) {
		writeJSON(w, http.StatusOK, completeHabitResponse{Habit: habit, AlreadyCompleted: true})
		return
	}
	if err != nil {
		h.logger.Error("complete habit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to complete habit"})
		return
	}
	if habit == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "habit not found"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("habit", "completed", habit.ID, map[string]any{"current_streak": habit.CurrentStreak}))
	writeJSON(w, http.StatusOK, completeHabitResponse{Habit: habit})
}

func (h *HabitHandler) ListCompletions(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid habit ID"})
		return
	}

	completions, err := h.habitStore.ListCompletions(id, auth.UserID(r.Context()), parseLimit(r, 30))
	if err != nil {
		h.logger.Error("list habit completions", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list completions"})
		return
	}
	writeJSON(w, http.StatusOK, completions)
}

func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid habit ID"})
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.habitStore.Delete(id, userID); err != nil {
		h.logger.Error("delete habit", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete habit"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("habit", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

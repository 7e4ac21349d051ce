package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/flourish/internal/auth"
	"github.com/dukerupert/flourish/internal/store"
	"github.com/dukerupert/flourish/internal/websocket"
)

type GoalHandler struct {
	goalStore *store.GoalStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewGoalHandler(gs *store.GoalStore, hub *websocket.Hub, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{goalStore: gs, hub: hub, logger: logger}
}

type goalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	TargetDate  string `json:"target_date"`
}

func (r *goalRequest) validate() (targetDate *time.Time, msg string) {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return nil, "title is required"
	}
	if r.Priority == "" {
		r.Priority = "medium"
	}
	if r.Priority != "low" && r.Priority != "medium" && r.Priority != "high" {
		return nil, "priority must be low, medium, or high"
	}
	if r.TargetDate != "" {
		t, err := time.Parse("2006-01-02", r.TargetDate)
		if err != nil {
			return nil, "target_date must be YYYY-MM-DD"
		}
		targetDate = &t
	}
	return targetDate, ""
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	targetDate, msg := req.validate()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	userID := auth.UserID(r.Context())
	g, err := h.goalStore.Create(userID, req.Title, req.Description, req.Category, req.Priority, targetDate)
	if err != nil {
		h.logger.Error("create goal", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create goal"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("goal", "created", g.ID, nil))
	writeJSON(w, http.StatusCreated, g)
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	goals, err := h.goalStore.List(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list goals", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list goals"})
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid goal ID"})
		return
	}

	g, err := h.goalStore.GetByID(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get goal", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get goal"})
		return
	}
	if g == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "goal not found"})
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid goal ID"})
		return
	}

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	targetDate, msg := req.validate()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	userID := auth.UserID(r.Context())
	g, err := h.goalStore.Update(id, userID, req.Title, req.Description, req.Category, req.Priority, targetDate)
	if err != nil {
		h.logger.Error("update goal", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update goal"})
		return
	}
	if g == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "goal not found"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("goal", "updated", g.ID, nil))
	writeJSON(w, http.StatusOK, g)
}

type progressRequest struct {
	Progress int `json:"progress"`
}

// UpdateProgress sets the completion percentage. Progress is clamped to
// 0-100 and the status flips to completed at 100.
func (h *GoalHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid goal ID"})
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	userID := auth.UserID(r.Context())
	g, err := h.goalStore.UpdateProgress(id, userID, req.Progress)
	if err != nil {
		h.logger.Error("update goal progress", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update progress"})
		return
	}
	if g == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "goal not found"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("goal", "updated", g.ID, map[string]any{"progress": g.Progress}))
	writeJSON(w, http.StatusOK, g)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid goal ID"})
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.goalStore.Delete(id, userID); err != nil {
		h.logger.Error("delete goal", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete goal"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("goal", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

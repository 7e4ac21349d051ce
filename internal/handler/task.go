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

type TaskHandler struct {
	taskStore *store.TaskStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{taskStore: ts, hub: hub, logger: logger}
}

type taskRequest struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Priority          string `json:"priority"`
	DueDate           string `json:"due_date"`
	Category          string `json:"category"`
	EstimatedDuration *int   `json:"estimated_duration"`
	ActualDuration    *int   `json:"actual_duration"`
}

func (r *taskRequest) validate() (dueDate *time.Time, msg string) {
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
	if r.DueDate != "" {
		t, err := time.Parse("2006-01-02", r.DueDate)
		if err != nil {
			return nil, "due_date must be YYYY-MM-DD"
		}
		dueDate = &t
	}
	return dueDate, ""
}

func validTaskStatus(s string) bool {
	switch s {
	case "pending", "in_progress", "completed":
		return true
	}
	return false
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	dueDate, msg := req.validate()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	userID := auth.UserID(r.Context())
	task, err := h.taskStore.Create(userID, req.Title, req.Description, req.Priority, dueDate, req.Category, req.EstimatedDuration)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create task"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("task", "created", task.ID, nil))
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskStore.List(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list tasks"})
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task ID"})
		return
	}

	task, err := h.taskStore.GetByID(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return
	}
	if task == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task ID"})
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	dueDate, msg := req.validate()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	userID := auth.UserID(r.Context())
	task, err := h.taskStore.Update(id, userID, req.Title, req.Description, req.Priority, dueDate, req.Category, req.EstimatedDuration, req.ActualDuration)
	if err != nil {
		h.logger.Error("update task", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update task"})
		return
	}
	if task == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("task", "updated", task.ID, nil))
	writeJSON(w, http.StatusOK, task)
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus moves a task between pending, in_progress, and completed.
// Completing stamps completed_at; any other transition clears it.
func (h *TaskHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task ID"})
		return
	}

	var req taskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if !validTaskStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be pending, in_progress, or completed"})
		return
	}

	userID := auth.UserID(r.Context())
	task, err := h.taskStore.SetStatus(id, userID, req.Status)
	if err != nil {
		h.logger.Error("set task status", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update status"})
		return
	}
	if task == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("task", "updated", task.ID, map[string]any{"status": task.Status}))
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task ID"})
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.taskStore.Delete(id, userID); err != nil {
		h.logger.Error("delete task", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete task"})
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("task", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

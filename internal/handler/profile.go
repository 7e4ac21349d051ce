package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/flourish/internal/auth"
	"github.com/dukerupert/flourish/internal/store"
)

type ProfileHandler struct {
	userStore *store.UserStore
}

func NewProfileHandler(us *store.UserStore) *ProfileHandler {
	return &ProfileHandler{userStore: us}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.userStore.GetByID(auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get profile"})
		return
	}
	if u == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type profileRequest struct {
	Name string `json:"name"`
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	u, err := h.userStore.UpdateName(auth.UserID(r.Context()), req.Name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update profile"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

func parseLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

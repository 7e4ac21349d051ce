package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/flourish/internal/auth"
	"github.com/dukerupert/flourish/internal/dashboard"
)

type DashboardHandler struct {
	dashboard *dashboard.Service
	logger    *slog.Logger
}

func NewDashboardHandler(svc *dashboard.Service, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: svc, logger: logger}
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary := h.dashboard.Summarize(r.Context(), auth.UserID(r.Context()))
	writeJSON(w, http.StatusOK, summary)
}

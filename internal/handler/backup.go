package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dukerupert/flourish/internal/backup"
)

type BackupHandler struct {
	manager *backup.Manager
	logger  *slog.Logger
}

func NewBackupHandler(m *backup.Manager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, logger: logger}
}

func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "backups are not configured"})
		return
	}

	id, err := h.manager.RunNow(r.Context())
	if err != nil {
		h.logger.Error("run backup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "backup failed"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.manager.List(parseLimit(r, 20))
	if err != nil {
		h.logger.Error("list backups", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list backups"})
		return
	}
	writeJSON(w, http.StatusOK, backups)
}

func (h *BackupHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

// Download streams the encrypted backup object as stored; it is decrypted
// client-side with the configured passphrase.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid backup ID"})
		return
	}

	body, size, err := h.manager.Download(r.Context(), id)
	if err != nil {
		h.logger.Error("download backup", "error", err, "id", id)
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "backup not found"})
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=backup-%d.db.enc", id))
	if size > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	}
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Error("stream backup", "error", err, "id", id)
	}
}

package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/rfountain/steward/internal/backup"
	"github.com/rfountain/steward/internal/store"
)

type BackupHandler struct {
	manager *backup.Manager
	backups *store.BackupStore
	logger  *slog.Logger
}

func NewBackupHandler(m *backup.Manager, bs *store.BackupStore, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, backups: bs, logger: logger}
}

func (h *BackupHandler) requireEnabled(w http.ResponseWriter) bool {
	if h.manager == nil || !h.manager.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "backups are not configured"})
		return false
	}
	return true
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h.manager == nil {
		writeJSON(w, http.StatusOK, backup.Status{})
		return
	}
	writeJSON(w, http.StatusOK, h.manager.Status())
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.backups.List(50)
	if err != nil {
		h.logger.Error("list backups", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list backups"})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *BackupHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	if !h.requireEnabled(w) {
		return
	}

	b, err := h.manager.RunNow(r.Context())
	if err != nil {
		h.logger.Error("run backup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "backup failed"})
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	if !h.requireEnabled(w) {
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid backup ID"})
		return
	}

	if err := h.manager.Restore(r.Context(), id); err != nil {
		h.logger.Error("restore backup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "restore failed"})
		return
	}

	// The restored file replaces the live database; a process restart
	// picks it up.
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored", "note": "restart the server to load the restored database"})
}

func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	if !h.requireEnabled(w) {
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid backup ID"})
		return
	}

	body, size, err := h.manager.Download(r.Context(), id)
	if err != nil {
		h.logger.Error("download backup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "download failed"})
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("backup-%d.db.enc", id)))
	if size > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	}
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Error("stream backup", "error", err)
	}
}

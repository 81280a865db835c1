package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/rfountain/steward/internal/auth"
	"github.com/rfountain/steward/internal/store"
	"github.com/rfountain/steward/internal/websocket"
)

// maxUploadSize bounds item photo and document scans at 20 MiB.
const maxUploadSize = 20 << 20

type MediaHandler struct {
	media     *store.MediaStore
	items     *store.ItemStore
	hub       *websocket.Hub
	uploadDir string
	logger    *slog.Logger
}

func NewMediaHandler(ms *store.MediaStore, is *store.ItemStore, hub *websocket.Hub, uploadDir string, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{media: ms, items: is, hub: hub, uploadDir: uploadDir, logger: logger}
}

func (h *MediaHandler) broadcast(userID int64, action string, id int64) {
	if h.hub != nil {
		h.hub.Broadcast(userID, websocket.NewMessage("media", action, id))
	}
}

// Upload accepts a multipart form with a "file" part plus item_id and
// optional media_type fields. The file lands on disk under a generated
// name; the original name is kept only as metadata.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	itemID, err := strconv.ParseInt(r.FormValue("item_id"), 10, 64)
	if err != nil || itemID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item_id is required"})
		return
	}

	item, err := h.items.GetByID(userID, itemID)
	if err != nil {
		h.logger.Error("upload item lookup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to upload media"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
		return
	}
	defer file.Close()

	mediaType := r.FormValue("media_type")
	if mediaType == "" {
		mediaType = "photo"
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		h.logger.Error("upload mkdir", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to upload media"})
		return
	}

	stored := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(header.Filename))
	dst := filepath.Join(h.uploadDir, stored)
	out, err := os.Create(dst)
	if err != nil {
		h.logger.Error("upload create file", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to upload media"})
		return
	}
	size, err := io.Copy(out, file)
	out.Close()
	if err != nil {
		os.Remove(dst)
		h.logger.Error("upload copy", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to upload media"})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	m, err := h.media.Create(userID, itemID, mediaType, dst, header.Filename, &size, mimeType)
	if err != nil {
		os.Remove(dst)
		h.logger.Error("create media", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to upload media"})
		return
	}

	h.broadcast(userID, "created", m.ID)
	writeJSON(w, http.StatusCreated, m)
}

func (h *MediaHandler) ListForItem(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	itemID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	list, err := h.media.ListForItem(userID, itemID)
	if err != nil {
		h.logger.Error("list media", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list media"})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// File streams the stored bytes for a media row the tenant owns.
func (h *MediaHandler) File(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid media ID"})
		return
	}

	m, err := h.media.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get media", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get media"})
		return
	}
	if m == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "media not found"})
		return
	}

	if m.MimeType != "" {
		w.Header().Set("Content-Type", m.MimeType)
	}
	http.ServeFile(w, r, m.FilePath)
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid media ID"})
		return
	}

	m, err := h.media.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get media", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete media"})
		return
	}
	if m == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "media not found"})
		return
	}

	if err := h.media.Delete(userID, id); err != nil {
		h.logger.Error("delete media", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete media"})
		return
	}
	if err := os.Remove(m.FilePath); err != nil && !os.IsNotExist(err) {
		h.logger.Error("remove media file", "error", err)
	}

	h.broadcast(userID, "deleted", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rfountain/steward/internal/auth"
	"github.com/rfountain/steward/internal/store"
	"github.com/rfountain/steward/internal/websocket"
)

type DocumentHandler struct {
	documents *store.DocumentStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewDocumentHandler(ds *store.DocumentStore, hub *websocket.Hub, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{documents: ds, hub: hub, logger: logger}
}

func (h *DocumentHandler) broadcast(userID int64, action string, id int64) {
	if h.hub != nil {
		h.hub.Broadcast(userID, websocket.NewMessage("document", action, id))
	}
}

type documentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	ChangeNotes string `json:"change_notes"`
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}

	doc, err := h.documents.Create(userID, strings.TrimSpace(req.Title), req.Description, req.Content, req.Category, req.Status)
	if err != nil {
		h.logger.Error("create document", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create document"})
		return
	}

	h.broadcast(userID, "created", doc.ID)
	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	docs, err := h.documents.List(userID)
	if err != nil {
		h.logger.Error("list documents", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list documents"})
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document ID"})
		return
	}

	doc, err := h.documents.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get document", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get document"})
		return
	}
	if doc == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document ID"})
		return
	}

	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}

	doc, err := h.documents.Update(userID, id, strings.TrimSpace(req.Title), req.Description, req.Content, req.Category, req.Status, req.ChangeNotes)
	if err != nil {
		h.logger.Error("update document", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update document"})
		return
	}
	if doc == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}

	h.broadcast(userID, "updated", doc.ID)
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document ID"})
		return
	}

	versions, err := h.documents.ListVersions(userID, id)
	if err != nil {
		h.logger.Error("list document versions", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list versions"})
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document ID"})
		return
	}

	if err := h.documents.Delete(userID, id); err != nil {
		h.logger.Error("delete document", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete document"})
		return
	}

	h.broadcast(userID, "deleted", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

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

type TagHandler struct {
	tags   *store.TagStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewTagHandler(ts *store.TagStore, hub *websocket.Hub, logger *slog.Logger) *TagHandler {
	return &TagHandler{tags: ts, hub: hub, logger: logger}
}

func (h *TagHandler) broadcast(userID int64, action string, id int64) {
	if h.hub != nil {
		h.hub.Broadcast(userID, websocket.NewMessage("tag", action, id))
	}
}

type tagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	tag, err := h.tags.Create(userID, strings.TrimSpace(req.Name), req.Color)
	if err != nil {
		h.logger.Error("create tag", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create tag"})
		return
	}

	h.broadcast(userID, "created", tag.ID)
	writeJSON(w, http.StatusCreated, tag)
}

func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	tags, err := h.tags.List(userID)
	if err != nil {
		h.logger.Error("list tags", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list tags"})
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tag ID"})
		return
	}

	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	tag, err := h.tags.Update(userID, id, strings.TrimSpace(req.Name), req.Color)
	if err != nil {
		h.logger.Error("update tag", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update tag"})
		return
	}
	if tag == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "tag not found"})
		return
	}

	h.broadcast(userID, "updated", tag.ID)
	writeJSON(w, http.StatusOK, tag)
}

func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tag ID"})
		return
	}

	if err := h.tags.Delete(userID, id); err != nil {
		h.logger.Error("delete tag", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete tag"})
		return
	}

	h.broadcast(userID, "deleted", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

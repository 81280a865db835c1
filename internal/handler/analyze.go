package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rfountain/steward/internal/auth"
	"github.com/rfountain/steward/internal/store"
	"github.com/rfountain/steward/internal/vision"
	"github.com/rfountain/steward/internal/websocket"
)

// maxImageSize bounds analysis uploads at 10 MiB; larger photos should
// be resized client-side before submission.
const maxImageSize = 10 << 20

type AnalyzeHandler struct {
	vision *vision.Client
	items  *store.ItemStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewAnalyzeHandler(vc *vision.Client, is *store.ItemStore, hub *websocket.Hub, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{vision: vc, items: is, hub: hub, logger: logger}
}

// Analyze runs a photo through the vision model and returns the
// detected items with unit-square bounding boxes. An optional "target"
// field narrows the model to a single named object.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "image is required"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("analyze read image", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read image"})
		return
	}

	target := strings.TrimSpace(r.FormValue("target"))
	mimeType := header.Header.Get("Content-Type")

	detections, err := h.vision.DetectItems(r.Context(), image, mimeType, target)
	switch {
	case errors.Is(err, vision.ErrNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "image analysis is not configured"})
		return
	case errors.Is(err, vision.ErrResponseFormat):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "the analysis service returned an unreadable response"})
		return
	case err != nil:
		h.logger.Error("analyze", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "image analysis failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"detections": detections})
}

type fromDetectionRequest struct {
	Label       string `json:"label"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Condition   string `json:"condition"`
	RoomID      *int64 `json:"room_id"`
}

// FromDetection promotes a single detection into an inventory item.
func (h *AnalyzeHandler) FromDetection(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req fromDetectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Label) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "label is required"})
		return
	}

	draft := store.ItemDraft{
		Name:        strings.TrimSpace(req.Label),
		Description: req.Description,
		Category:    req.Category,
		Condition:   req.Condition,
	}
	item, err := h.items.Create(userID, draft, req.RoomID)
	if err != nil {
		h.logger.Error("create item from detection", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(userID, websocket.NewMessage("item", "created", item.ID))
	}
	writeJSON(w, http.StatusCreated, item)
}

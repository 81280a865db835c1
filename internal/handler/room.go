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

type RoomHandler struct {
	rooms  *store.RoomStore
	items  *store.ItemStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewRoomHandler(rs *store.RoomStore, is *store.ItemStore, hub *websocket.Hub, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{rooms: rs, items: is, hub: hub, logger: logger}
}

func (h *RoomHandler) broadcast(userID int64, action string, id int64) {
	if h.hub != nil {
		h.hub.Broadcast(userID, websocket.NewMessage("room", action, id))
	}
}

type roomRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	FloorNumber int      `json:"floor_number"`
	AreaSqft    *float64 `json:"area_sqft"`
	RoomType    string   `json:"room_type"`
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	room, err := h.rooms.Create(userID, strings.TrimSpace(req.Name), req.Description, req.FloorNumber, req.AreaSqft, req.RoomType)
	if err != nil {
		h.logger.Error("create room", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create room"})
		return
	}

	h.broadcast(userID, "created", room.ID)
	writeJSON(w, http.StatusCreated, room)
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	rooms, err := h.rooms.List(userID)
	if err != nil {
		h.logger.Error("list rooms", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list rooms"})
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room ID"})
		return
	}

	room, err := h.rooms.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get room", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get room"})
		return
	}
	if room == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
		return
	}

	items, err := h.items.ListByRoom(userID, id)
	if err != nil {
		h.logger.Error("get room items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get room"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"room":  room,
		"items": items,
	})
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room ID"})
		return
	}

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	room, err := h.rooms.Update(userID, id, strings.TrimSpace(req.Name), req.Description, req.FloorNumber, req.AreaSqft, req.RoomType)
	if err != nil {
		h.logger.Error("update room", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update room"})
		return
	}
	if room == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
		return
	}

	h.broadcast(userID, "updated", room.ID)
	writeJSON(w, http.StatusOK, room)
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room ID"})
		return
	}

	if err := h.rooms.Delete(userID, id); err != nil {
		h.logger.Error("delete room", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete room"})
		return
	}

	h.broadcast(userID, "deleted", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

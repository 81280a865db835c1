package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rfountain/steward/internal/auth"
	"github.com/rfountain/steward/internal/store"
	"github.com/rfountain/steward/internal/websocket"
)

type ItemHandler struct {
	items  *store.ItemStore
	tags   *store.TagStore
	media  *store.MediaStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewItemHandler(is *store.ItemStore, ts *store.TagStore, ms *store.MediaStore, hub *websocket.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{items: is, tags: ts, media: ms, hub: hub, logger: logger}
}

func (h *ItemHandler) broadcast(userID int64, action string, id int64) {
	if h.hub != nil {
		h.hub.Broadcast(userID, websocket.NewMessage("item", action, id))
	}
}

type itemRequest struct {
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	RoomID             *int64     `json:"room_id"`
	PurchaseDate       *time.Time `json:"purchase_date"`
	PurchasePrice      *float64   `json:"purchase_price"`
	Condition          string     `json:"condition"`
	Notes              string     `json:"notes"`
	PurchasedFrom      string     `json:"purchased_from"`
	SerialNumber       string     `json:"serial_number"`
	WarrantyProvider   string     `json:"warranty_provider"`
	WarrantyExpiration *time.Time `json:"warranty_expiration"`
	StorageLocation    string     `json:"storage_location"`
	CurrentValue       *float64   `json:"current_value"`
	HasInsurance       bool       `json:"has_insurance"`
	InsuranceProvider  string     `json:"insurance_provider"`
	NeedsMaintenance   bool       `json:"needs_maintenance"`
}

func (req itemRequest) draft() store.ItemDraft {
	return store.ItemDraft{
		Name:               strings.TrimSpace(req.Name),
		Description:        req.Description,
		Category:           req.Category,
		PurchaseDate:       req.PurchaseDate,
		PurchasePrice:      req.PurchasePrice,
		Condition:          req.Condition,
		Notes:              req.Notes,
		PurchasedFrom:      req.PurchasedFrom,
		SerialNumber:       req.SerialNumber,
		WarrantyProvider:   req.WarrantyProvider,
		WarrantyExpiration: req.WarrantyExpiration,
		StorageLocation:    req.StorageLocation,
		CurrentValue:       req.CurrentValue,
		HasInsurance:       req.HasInsurance,
		InsuranceProvider:  req.InsuranceProvider,
		NeedsMaintenance:   req.NeedsMaintenance,
	}
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	item, err := h.items.Create(userID, req.draft(), req.RoomID)
	if err != nil {
		h.logger.Error("create item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}

	h.broadcast(userID, "created", item.ID)
	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	if roomStr := r.URL.Query().Get("room_id"); roomStr != "" {
		roomID, err := strconv.ParseInt(roomStr, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room_id"})
			return
		}
		items, err := h.items.ListByRoom(userID, roomID)
		if err != nil {
			h.logger.Error("list items by room", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
			return
		}
		writeJSON(w, http.StatusOK, items)
		return
	}

	items, err := h.items.List(userID)
	if err != nil {
		h.logger.Error("list items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	item, err := h.items.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	tags, err := h.tags.ListForItem(userID, id)
	if err != nil {
		h.logger.Error("get item tags", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	media, err := h.media.ListForItem(userID, id)
	if err != nil {
		h.logger.Error("get item media", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"item":  item,
		"tags":  tags,
		"media": media,
	})
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	item, err := h.items.Update(userID, id, req.draft())
	if err != nil {
		h.logger.Error("update item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.broadcast(userID, "updated", item.ID)
	writeJSON(w, http.StatusOK, item)
}

type assignRoomRequest struct {
	RoomID *int64 `json:"room_id"`
}

func (h *ItemHandler) AssignRoom(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	var req assignRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	item, err := h.items.AssignRoom(userID, id, req.RoomID)
	if err != nil {
		h.logger.Error("assign room", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to assign room"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.broadcast(userID, "updated", item.ID)
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	if err := h.items.Delete(userID, id); err != nil {
		h.logger.Error("delete item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}

	h.broadcast(userID, "deleted", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type tagItemRequest struct {
	TagID int64 `json:"tag_id"`
}

func (h *ItemHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	var req tagItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TagID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tag_id is required"})
		return
	}

	if err := h.tags.TagItem(userID, id, req.TagID); err != nil {
		h.logger.Error("tag item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to tag item"})
		return
	}

	h.broadcast(userID, "updated", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "tagged"})
}

func (h *ItemHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}
	tagID, err := strconv.ParseInt(r.PathValue("tag_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tag ID"})
		return
	}

	if err := h.tags.UntagItem(userID, id, tagID); err != nil {
		h.logger.Error("untag item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to untag item"})
		return
	}

	h.broadcast(userID, "updated", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "untagged"})
}

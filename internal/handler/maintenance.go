package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rfountain/steward/internal/auth"
	"github.com/rfountain/steward/internal/store"
	"github.com/rfountain/steward/internal/websocket"
)

type MaintenanceHandler struct {
	maintenance *store.MaintenanceStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewMaintenanceHandler(ms *store.MaintenanceStore, hub *websocket.Hub, logger *slog.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{maintenance: ms, hub: hub, logger: logger}
}

func (h *MaintenanceHandler) broadcast(userID int64, action string, id int64) {
	if h.hub != nil {
		h.hub.Broadcast(userID, websocket.NewMessage("maintenance", action, id))
	}
}

type maintenanceRequest struct {
	ItemID          int64      `json:"item_id"`
	MaintenanceType string     `json:"maintenance_type"`
	FrequencyDays   *int       `json:"frequency_days"`
	NextDue         *time.Time `json:"next_due"`
	Instructions    string     `json:"instructions"`
}

func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req maintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ItemID == 0 || strings.TrimSpace(req.MaintenanceType) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item_id and maintenance_type are required"})
		return
	}

	m, err := h.maintenance.Create(userID, req.ItemID, strings.TrimSpace(req.MaintenanceType), req.FrequencyDays, req.NextDue, req.Instructions)
	if err != nil {
		h.logger.Error("create maintenance", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create maintenance schedule"})
		return
	}

	h.broadcast(userID, "created", m.ID)
	writeJSON(w, http.StatusCreated, m)
}

func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	if r.URL.Query().Get("due") == "true" {
		due, err := h.maintenance.ListDue(userID, time.Now().UTC())
		if err != nil {
			h.logger.Error("list due maintenance", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list maintenance"})
			return
		}
		writeJSON(w, http.StatusOK, due)
		return
	}

	list, err := h.maintenance.List(userID)
	if err != nil {
		h.logger.Error("list maintenance", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list maintenance"})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid maintenance ID"})
		return
	}

	m, err := h.maintenance.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get maintenance", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get maintenance"})
		return
	}
	if m == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "maintenance schedule not found"})
		return
	}

	logs, err := h.maintenance.ListLogs(userID, id)
	if err != nil {
		h.logger.Error("get maintenance logs", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get maintenance"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"maintenance": m,
		"logs":        logs,
	})
}

func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid maintenance ID"})
		return
	}

	var req maintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.MaintenanceType) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "maintenance_type is required"})
		return
	}

	m, err := h.maintenance.Update(userID, id, strings.TrimSpace(req.MaintenanceType), req.FrequencyDays, req.NextDue, req.Instructions)
	if err != nil {
		h.logger.Error("update maintenance", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update maintenance"})
		return
	}
	if m == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "maintenance schedule not found"})
		return
	}

	h.broadcast(userID, "updated", m.ID)
	writeJSON(w, http.StatusOK, m)
}

type completeRequest struct {
	PerformedBy string   `json:"performed_by"`
	Notes       string   `json:"notes"`
	Cost        *float64 `json:"cost"`
}

func (h *MaintenanceHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid maintenance ID"})
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	m, err := h.maintenance.Complete(userID, id, req.PerformedBy, req.Notes, req.Cost)
	if err != nil {
		h.logger.Error("complete maintenance", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to complete maintenance"})
		return
	}
	if m == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "maintenance schedule not found"})
		return
	}

	h.broadcast(userID, "updated", m.ID)
	writeJSON(w, http.StatusOK, m)
}

func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid maintenance ID"})
		return
	}

	if err := h.maintenance.Delete(userID, id); err != nil {
		h.logger.Error("delete maintenance", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete maintenance"})
		return
	}

	h.broadcast(userID, "deleted", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

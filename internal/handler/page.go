package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/rfountain/steward/internal/auth"
	"github.com/rfountain/steward/internal/store"
)

type PageHandler struct {
	items       *store.ItemStore
	rooms       *store.RoomStore
	tags        *store.TagStore
	maintenance *store.MaintenanceStore
	documents   *store.DocumentStore
	templates   *template.Template
	logger      *slog.Logger
}

func NewPageHandler(
	is *store.ItemStore,
	rs *store.RoomStore,
	ts *store.TagStore,
	ms *store.MaintenanceStore,
	ds *store.DocumentStore,
	logger *slog.Logger,
) *PageHandler {
	tmpl := template.Must(template.ParseGlob("web/templates/*.html"))
	return &PageHandler{
		items:       is,
		rooms:       rs,
		tags:        ts,
		maintenance: ms,
		documents:   ds,
		templates:   tmpl,
		logger:      logger,
	}
}

func (h *PageHandler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("render template", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", map[string]any{
		"Title": "Sign in - Steward",
		"Error": r.URL.Query().Get("error"),
	})
}

func (h *PageHandler) Signup(w http.ResponseWriter, r *http.Request) {
	h.render(w, "signup.html", map[string]any{
		"Title": "Create account - Steward",
		"Error": r.URL.Query().Get("error"),
	})
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	userID := auth.UserID(r.Context())

	items, err := h.items.List(userID)
	if err != nil {
		http.Error(w, "failed to load data", http.StatusInternalServerError)
		return
	}
	rooms, err := h.rooms.List(userID)
	if err != nil {
		http.Error(w, "failed to load data", http.StatusInternalServerError)
		return
	}

	id, _ := auth.FromContext(r.Context())
	h.render(w, "index.html", map[string]any{
		"Title":     "Steward",
		"Name":      id.Name,
		"ItemCount": len(items),
		"RoomCount": len(rooms),
		"Items":     items,
	})
}

func (h *PageHandler) Items(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	items, err := h.items.List(userID)
	if err != nil {
		http.Error(w, "failed to load items", http.StatusInternalServerError)
		return
	}
	h.render(w, "items.html", map[string]any{
		"Title": "Items - Steward",
		"Items": items,
	})
}

func (h *PageHandler) ItemDetail(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	item, err := h.items.GetByID(userID, id)
	if err != nil {
		http.Error(w, "failed to load item", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.NotFound(w, r)
		return
	}
	tags, _ := h.tags.ListForItem(userID, id)
	schedules, _ := h.maintenance.ListForItem(userID, id)

	h.render(w, "item_detail.html", map[string]any{
		"Title":       item.Name + " - Steward",
		"Item":        item,
		"Tags":        tags,
		"Maintenance": schedules,
	})
}

// ItemCreate and ItemAIUpload render without a session so a phone can
// capture items straight from a shared link.
func (h *PageHandler) ItemCreate(w http.ResponseWriter, r *http.Request) {
	h.render(w, "item_create.html", map[string]any{"Title": "Add item - Steward"})
}

func (h *PageHandler) ItemAIUpload(w http.ResponseWriter, r *http.Request) {
	h.render(w, "item_ai_upload.html", map[string]any{"Title": "Photo capture - Steward"})
}

func (h *PageHandler) Rooms(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	rooms, err := h.rooms.List(userID)
	if err != nil {
		http.Error(w, "failed to load rooms", http.StatusInternalServerError)
		return
	}
	h.render(w, "rooms.html", map[string]any{
		"Title": "Rooms - Steward",
		"Rooms": rooms,
	})
}

func (h *PageHandler) Maintenance(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	list, err := h.maintenance.List(userID)
	if err != nil {
		http.Error(w, "failed to load maintenance", http.StatusInternalServerError)
		return
	}
	h.render(w, "maintenance.html", map[string]any{
		"Title":     "Maintenance - Steward",
		"Schedules": list,
	})
}

func (h *PageHandler) Documentation(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	docs, err := h.documents.List(userID)
	if err != nil {
		http.Error(w, "failed to load documentation", http.StatusInternalServerError)
		return
	}
	h.render(w, "documentation.html", map[string]any{
		"Title":     "Documentation - Steward",
		"Documents": docs,
	})
}

func (h *PageHandler) Tags(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	tags, err := h.tags.List(userID)
	if err != nil {
		http.Error(w, "failed to load tags", http.StatusInternalServerError)
		return
	}
	h.render(w, "tags.html", map[string]any{
		"Title": "Tags - Steward",
		"Tags":  tags,
	})
}

func (h *PageHandler) Settings(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	h.render(w, "settings.html", map[string]any{
		"Title": "Settings - Steward",
		"Email": id.Email,
		"Name":  id.Name,
	})
}

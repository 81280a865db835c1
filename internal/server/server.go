package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rfountain/steward/internal/backup"
	"github.com/rfountain/steward/internal/config"
	"github.com/rfountain/steward/internal/handler"
	"github.com/rfountain/steward/internal/identity"
	"github.com/rfountain/steward/internal/middleware"
	"github.com/rfountain/steward/internal/push"
	"github.com/rfountain/steward/internal/session"
	"github.com/rfountain/steward/internal/store"
	"github.com/rfountain/steward/internal/vision"
	ws "github.com/rfountain/steward/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	itemH         *handler.ItemHandler
	roomH         *handler.RoomHandler
	tagH          *handler.TagHandler
	maintenanceH  *handler.MaintenanceHandler
	documentH     *handler.DocumentHandler
	mediaH        *handler.MediaHandler
	analyzeH      *handler.AnalyzeHandler
	pageH         *handler.PageHandler
	authH         *handler.AuthHandler
	pushH         *handler.PushHandler
	backupH       *handler.BackupHandler
	sessions      *session.Store
	userStore     *store.UserStore
	pushStore     *store.PushStore
	rateLimiter   *middleware.RateLimiter
	adminEmail    string
	backupManager *backup.Manager
	pushService   *push.Service
	pushScheduler *push.Scheduler
	logger        *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	itemStore := store.NewItemStore(db)
	roomStore := store.NewRoomStore(db)
	tagStore := store.NewTagStore(db)
	maintenanceStore := store.NewMaintenanceStore(db)
	documentStore := store.NewDocumentStore(db)
	mediaStore := store.NewMediaStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	sessions := session.NewStore(session.NewCodec(cfg.SessionSecret), cfg.Production())

	idp := identity.NewClient(identity.Config{
		Domain:       cfg.Identity.Domain,
		ClientID:     cfg.Identity.ClientID,
		ClientSecret: cfg.Identity.ClientSecret,
	})

	visionClient := vision.NewClient(vision.Config{
		APIKey:  cfg.Vision.APIKey,
		BaseURL: cfg.Vision.BaseURL,
		Model:   cfg.Vision.Model,
		Timeout: cfg.Vision.Timeout,
	})

	backupMgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.BackupS3.Endpoint,
			Bucket:    cfg.BackupS3.Bucket,
			Region:    cfg.BackupS3.Region,
			AccessKey: cfg.BackupS3.AccessKey,
			SecretKey: cfg.BackupS3.SecretKey,
		},
		DBPath:     cfg.DBPath,
		Passphrase: cfg.BackupPassphrase,
	}, db, backupStore, logger.With("component", "backup"))

	pushLogger := logger.With("component", "push")
	pushSvc := push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey)
	pushSched := push.NewScheduler(pushSvc, pushStore, maintenanceStore, pushLogger)

	return &Server{
		db:            db,
		hub:           hub,
		itemH:         handler.NewItemHandler(itemStore, tagStore, mediaStore, hub, logger.With("component", "item")),
		roomH:         handler.NewRoomHandler(roomStore, itemStore, hub, logger.With("component", "room")),
		tagH:          handler.NewTagHandler(tagStore, hub, logger.With("component", "tag")),
		maintenanceH:  handler.NewMaintenanceHandler(maintenanceStore, hub, logger.With("component", "maintenance")),
		documentH:     handler.NewDocumentHandler(documentStore, hub, logger.With("component", "document")),
		mediaH:        handler.NewMediaHandler(mediaStore, itemStore, hub, "data/uploads", logger.With("component", "media")),
		analyzeH:      handler.NewAnalyzeHandler(visionClient, itemStore, hub, logger.With("component", "analyze")),
		pageH:         handler.NewPageHandler(itemStore, roomStore, tagStore, maintenanceStore, documentStore, logger.With("component", "page")),
		authH:         handler.NewAuthHandler(userStore, sessions, idp, cfg.BaseURL, logger.With("component", "auth")),
		pushH:         handler.NewPushHandler(pushSvc, pushStore, logger.With("component", "push_handler")),
		backupH:       handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup_handler")),
		sessions:      sessions,
		userStore:     userStore,
		pushStore:     pushStore,
		rateLimiter:   middleware.NewRateLimiter(),
		adminEmail:    cfg.AdminEmail,
		backupManager: backupMgr,
		pushService:   pushSvc,
		pushScheduler: pushSched,
		logger:        logger,
	}
}

// BackupManager returns the backup manager so main can start and stop
// the schedule.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// PushScheduler returns the maintenance reminder scheduler.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no session required)
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/auth/signup", s.rateLimitedHandler(s.authH.Signup))
	outerMux.HandleFunc("GET /api/auth/federated/login", s.authH.FederatedLogin)
	outerMux.HandleFunc("GET /api/auth/federated/signup", s.authH.FederatedSignup)
	outerMux.HandleFunc("GET /api/auth/callback", s.authH.Callback)
	outerMux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	outerMux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// JSON API routes: 401 instead of redirect
	apiMux := http.NewServeMux()
	s.registerAPIRoutes(apiMux)
	outerMux.Handle("/api/", middleware.RequireSession(s.sessions, s.userStore)(apiMux))

	outerMux.Handle("GET /ws", middleware.RequireSession(s.sessions, s.userStore)(ws.Handler(s.hub)))

	// Page routes: redirect through the gateway
	pageMux := http.NewServeMux()
	s.registerPageRoutes(pageMux)
	outerMux.Handle("/", middleware.Gateway(s.sessions, s.userStore)(pageMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) registerPageRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", s.pageH.Dashboard)
	mux.HandleFunc("GET /login", s.pageH.Login)
	mux.HandleFunc("GET /signup", s.pageH.Signup)
	mux.HandleFunc("GET /items", s.pageH.Items)
	mux.HandleFunc("GET /items/create", s.pageH.ItemCreate)
	mux.HandleFunc("GET /items/ai-upload", s.pageH.ItemAIUpload)
	mux.HandleFunc("GET /items/{id}", s.pageH.ItemDetail)
	mux.HandleFunc("GET /rooms", s.pageH.Rooms)
	mux.HandleFunc("GET /maintenance", s.pageH.Maintenance)
	mux.HandleFunc("GET /documentation", s.pageH.Documentation)
	mux.HandleFunc("GET /tags", s.pageH.Tags)
	mux.HandleFunc("GET /settings", s.pageH.Settings)
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/auth/session", s.authH.Session)

	// Item API routes
	mux.HandleFunc("POST /api/items", s.itemH.Create)
	mux.HandleFunc("GET /api/items", s.itemH.List)
	mux.HandleFunc("GET /api/items/{id}", s.itemH.Get)
	mux.HandleFunc("PUT /api/items/{id}", s.itemH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)
	mux.HandleFunc("PUT /api/items/{id}/room", s.itemH.AssignRoom)
	mux.HandleFunc("POST /api/items/{id}/tags", s.itemH.AddTag)
	mux.HandleFunc("DELETE /api/items/{id}/tags/{tag_id}", s.itemH.RemoveTag)
	mux.HandleFunc("GET /api/items/{id}/media", s.mediaH.ListForItem)
	mux.HandleFunc("POST /api/items/from-detection", s.analyzeH.FromDetection)

	// Room API routes
	mux.HandleFunc("POST /api/rooms", s.roomH.Create)
	mux.HandleFunc("GET /api/rooms", s.roomH.List)
	mux.HandleFunc("GET /api/rooms/{id}", s.roomH.Get)
	mux.HandleFunc("PUT /api/rooms/{id}", s.roomH.Update)
	mux.HandleFunc("DELETE /api/rooms/{id}", s.roomH.Delete)

	// Tag API routes
	mux.HandleFunc("POST /api/tags", s.tagH.Create)
	mux.HandleFunc("GET /api/tags", s.tagH.List)
	mux.HandleFunc("PUT /api/tags/{id}", s.tagH.Update)
	mux.HandleFunc("DELETE /api/tags/{id}", s.tagH.Delete)

	// Maintenance API routes
	mux.HandleFunc("POST /api/maintenance", s.maintenanceH.Create)
	mux.HandleFunc("GET /api/maintenance", s.maintenanceH.List)
	mux.HandleFunc("GET /api/maintenance/{id}", s.maintenanceH.Get)
	mux.HandleFunc("PUT /api/maintenance/{id}", s.maintenanceH.Update)
	mux.HandleFunc("POST /api/maintenance/{id}/complete", s.maintenanceH.Complete)
	mux.HandleFunc("DELETE /api/maintenance/{id}", s.maintenanceH.Delete)

	// Documentation API routes
	mux.HandleFunc("POST /api/documents", s.documentH.Create)
	mux.HandleFunc("GET /api/documents", s.documentH.List)
	mux.HandleFunc("GET /api/documents/{id}", s.documentH.Get)
	mux.HandleFunc("PUT /api/documents/{id}", s.documentH.Update)
	mux.HandleFunc("GET /api/documents/{id}/versions", s.documentH.ListVersions)
	mux.HandleFunc("DELETE /api/documents/{id}", s.documentH.Delete)

	// Media API routes
	mux.HandleFunc("POST /api/media", s.mediaH.Upload)
	mux.HandleFunc("GET /api/media/{id}/file", s.mediaH.File)
	mux.HandleFunc("DELETE /api/media/{id}", s.mediaH.Delete)

	// AI analysis
	mux.HandleFunc("POST /api/ai/analyze", s.analyzeH.Analyze)

	// Push notification API routes
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)

	// Backup API routes. Snapshots span the whole database file, so
	// these stay admin-only.
	adminOnly := middleware.RequireAdmin(s.adminEmail)
	mux.Handle("GET /api/backups", adminOnly(http.HandlerFunc(s.backupH.List)))
	mux.Handle("GET /api/backups/status", adminOnly(http.HandlerFunc(s.backupH.Status)))
	mux.Handle("POST /api/backups/run", adminOnly(http.HandlerFunc(s.backupH.RunNow)))
	mux.Handle("POST /api/backups/{id}/restore", adminOnly(http.HandlerFunc(s.backupH.Restore)))
	mux.Handle("GET /api/backups/{id}/download", adminOnly(http.HandlerFunc(s.backupH.Download)))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/josplay/checkpoint/internal/catalog"
	"github.com/josplay/checkpoint/internal/config"
	"github.com/josplay/checkpoint/internal/email"
	"github.com/josplay/checkpoint/internal/handler"
	"github.com/josplay/checkpoint/internal/middleware"
	"github.com/josplay/checkpoint/internal/store"
	ws "github.com/josplay/checkpoint/internal/websocket"
)

type Server struct {
	db  *sql.DB
	cfg config.Config
	hub *ws.Hub

	authH        *handler.AuthHandler
	adminH       *handler.AdminHandler
	achievementH *handler.AchievementHandler
	progressH    *handler.ProgressHandler
	gameH        *handler.GameHandler
	syncH        *handler.SyncHandler

	sessionStore   *store.SessionStore
	magicLinkStore *store.MagicLinkStore
	identity       *middleware.Identity
	rateLimiter    *middleware.RateLimiter
	logger         *slog.Logger
}

func New(db *sql.DB, cfg config.Config, cat *catalog.Catalog, emailClient *email.Client, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	magicLinkStore := store.NewMagicLinkStore(db)
	completionStore := store.NewCompletionStore(db)

	identity := &middleware.Identity{
		Sessions:      sessionStore,
		Users:         userStore,
		JWTSecret:     cfg.JWTSecret,
		AdminEmail:    cfg.AdminEmail,
		AdminUsername: cfg.AdminUsername,
	}

	return &Server{
		db:  db,
		cfg: cfg,
		hub: hub,

		authH: handler.NewAuthHandler(userStore, cfg.JWTSecret, cfg.Production(),
			logger.With("component", "auth")),
		adminH: handler.NewAdminHandler(magicLinkStore, sessionStore, emailClient,
			cfg.BaseURL, cfg.AdminEmail, cfg.Production(),
			logger.With("component", "admin")),
		achievementH: handler.NewAchievementHandler(completionStore, cat, hub,
			logger.With("component", "achievement")),
		progressH: handler.NewProgressHandler(userStore, completionStore, cat,
			logger.With("component", "progress")),
		gameH: handler.NewGameHandler(cat),
		syncH: handler.NewSyncHandler(userStore, completionStore, cat, hub,
			cfg.AdminUsername, logger.With("component", "sync")),

		sessionStore:   sessionStore,
		magicLinkStore: magicLinkStore,
		identity:       identity,
		rateLimiter:    middleware.NewRateLimiter(),
		logger:         logger,
	}
}

// Hub returns the WebSocket hub broadcasting completion events.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// MagicLinkStore returns the magic link store for cleanup tasks.
func (s *Server) MagicLinkStore() *store.MagicLinkStore {
	return s.magicLinkStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /api/games", s.gameH.List)
	mux.HandleFunc("GET /api/games/{slug}/achievements", s.gameH.Get)
	mux.HandleFunc("GET /api/progress/{username}", s.progressH.Progress)
	mux.Handle("GET /ws", ws.Handle(s.hub))

	// Credential endpoints are rate limited per client IP
	mux.HandleFunc("POST /api/auth/register", s.rateLimited(s.authH.Register))
	mux.HandleFunc("POST /api/auth/login", s.rateLimited(s.authH.Login))
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("POST /api/admin/login", s.rateLimited(s.adminH.RequestLogin))
	mux.HandleFunc("GET /api/auth/verify", s.rateLimited(s.adminH.Verify))
	mux.HandleFunc("POST /api/admin/logout", s.adminH.Logout)

	// Completion routes need a signed-in caller
	requireAuth := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(h)
	}
	mux.Handle("POST /api/auth/password", requireAuth(s.authH.ChangePassword))
	mux.Handle("POST /api/achievements/toggle", requireAuth(s.achievementH.Toggle))
	mux.Handle("POST /api/achievements/sync-local", requireAuth(s.achievementH.SyncLocal))
	mux.Handle("GET /api/achievements/status", requireAuth(s.achievementH.Status))

	// External save-file sync, guarded by basic auth instead of cookies
	basicAuth := middleware.BasicAuth(s.cfg.AdminUsername, s.cfg.AdminPassword)
	mux.Handle("POST /api/sync", basicAuth(http.HandlerFunc(s.syncH.Sync)))

	wrapped := s.identity.Resolve(mux)
	return middleware.RequestLogger(s.logger.With("component", "http"))(wrapped)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}

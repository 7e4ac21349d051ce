package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/flourish/internal/assistant"
	"github.com/dukerupert/flourish/internal/backup"
	"github.com/dukerupert/flourish/internal/dashboard"
	"github.com/dukerupert/flourish/internal/email"
	"github.com/dukerupert/flourish/internal/handler"
	"github.com/dukerupert/flourish/internal/middleware"
	"github.com/dukerupert/flourish/internal/push"
	"github.com/dukerupert/flourish/internal/store"
	ws "github.com/dukerupert/flourish/internal/websocket"
)

// Config carries the optional integrations. Anything left empty disables
// the corresponding feature rather than failing startup.
type Config struct {
	OpenAIKey       string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	ReminderHour    int
	SecureCookies   bool
	Backup          backup.Config
}

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	authH          *handler.AuthHandler
	profileH       *handler.ProfileHandler
	moodH          *handler.MoodHandler
	journalH       *handler.JournalHandler
	goalH          *handler.GoalHandler
	habitH         *handler.HabitHandler
	taskH          *handler.TaskHandler
	chatH          *handler.ChatHandler
	dashboardH     *handler.DashboardHandler
	pushH          *handler.PushHandler
	backupH        *handler.BackupHandler
	userStore      *store.UserStore
	sessionStore   *store.SessionStore
	magicLinkStore *store.MagicLinkStore
	pushStore      *store.PushStore
	rateLimiter    *middleware.RateLimiter
	backupManager  *backup.Manager
	pushService    *push.Service
	pushScheduler  *push.Scheduler
	logger         *slog.Logger
}

func New(db *sql.DB, emailClient *email.Client, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	magicLinkStore := store.NewMagicLinkStore(db)
	moodStore := store.NewMoodStore(db)
	journalStore := store.NewJournalStore(db)
	goalStore := store.NewGoalStore(db)
	habitStore := store.NewHabitStore(db)
	taskStore := store.NewTaskStore(db)
	chatStore := store.NewChatStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	var completer assistant.Completer
	if cfg.OpenAIKey != "" {
		completer = assistant.NewOpenAICompleter(cfg.OpenAIKey)
	}
	assistantSvc := assistant.NewService(completer, userStore, moodStore, journalStore, goalStore, habitStore, chatStore, logger.With("component", "assistant"))

	dashboardSvc := dashboard.NewService(moodStore, journalStore, goalStore, habitStore, taskStore, logger.With("component", "dashboard"))

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore)

	var pushSvc *push.Service
	var pushSched *push.Scheduler
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
		pushSched = push.NewScheduler(pushSvc, pushStore, habitStore, cfg.ReminderHour)
	}

	return &Server{
		db:             db,
		hub:            hub,
		authH:          handler.NewAuthHandler(userStore, sessionStore, magicLinkStore, emailClient, cfg.SecureCookies, logger.With("component", "auth")),
		profileH:       handler.NewProfileHandler(userStore),
		moodH:          handler.NewMoodHandler(moodStore, hub, logger.With("component", "mood")),
		journalH:       handler.NewJournalHandler(journalStore, hub, logger.With("component", "journal")),
		goalH:          handler.NewGoalHandler(goalStore, hub, logger.With("component", "goal")),
		habitH:         handler.NewHabitHandler(habitStore, hub, logger.With("component", "habit")),
		taskH:          handler.NewTaskHandler(taskStore, hub, logger.With("component", "task")),
		chatH:          handler.NewChatHandler(assistantSvc, logger.With("component", "chat")),
		dashboardH:     handler.NewDashboardHandler(dashboardSvc, logger.With("component", "dashboard")),
		pushH:          handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push")),
		backupH:        handler.NewBackupHandler(backupMgr, logger.With("component", "backup")),
		userStore:      userStore,
		sessionStore:   sessionStore,
		magicLinkStore: magicLinkStore,
		pushStore:      pushStore,
		rateLimiter:    middleware.NewRateLimiter(),
		backupManager:  backupMgr,
		pushService:    pushSvc,
		pushScheduler:  pushSched,
		logger:         logger,
	}
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

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// PushScheduler returns the habit reminder scheduler; nil when VAPID keys
// are not configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/verify", s.rateLimitedHandler(s.authH.Verify))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
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

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)

	mux.HandleFunc("GET /api/profile", s.profileH.Get)
	mux.HandleFunc("PUT /api/profile", s.profileH.Update)

	mux.HandleFunc("POST /api/moods", s.moodH.Create)
	mux.HandleFunc("GET /api/moods", s.moodH.List)
	mux.HandleFunc("GET /api/moods/{id}", s.moodH.Get)
	mux.HandleFunc("DELETE /api/moods/{id}", s.moodH.Delete)

	mux.HandleFunc("POST /api/journal", s.journalH.Create)
	mux.HandleFunc("GET /api/journal", s.journalH.List)
	mux.HandleFunc("GET /api/journal/{id}", s.journalH.Get)
	mux.HandleFunc("PUT /api/journal/{id}", s.journalH.Update)
	mux.HandleFunc("DELETE /api/journal/{id}", s.journalH.Delete)
	mux.HandleFunc("POST /api/journal/{id}/favorite", s.journalH.ToggleFavorite)

	mux.HandleFunc("POST /api/goals", s.goalH.Create)
	mux.HandleFunc("GET /api/goals", s.goalH.List)
	mux.HandleFunc("GET /api/goals/{id}", s.goalH.Get)
	mux.HandleFunc("PUT /api/goals/{id}", s.goalH.Update)
	mux.HandleFunc("PUT /api/goals/{id}/progress", s.goalH.UpdateProgress)
	mux.HandleFunc("DELETE /api/goals/{id}", s.goalH.Delete)

	mux.HandleFunc("POST /api/habits", s.habitH.Create)
	mux.HandleFunc("GET /api/habits", s.habitH.List)
	mux.HandleFunc("GET /api/habits/{id}", s.habitH.Get)
	mux.HandleFunc("PUT /api/habits/{id}", s.habitH.Update)
	mux.HandleFunc("POST /api/habits/{id}/complete", s.habitH.Complete)
	mux.HandleFunc("GET /api/habits/{id}/completions", s.habitH.ListCompletions)
	mux.HandleFunc("DELETE /api/habits/{id}", s.habitH.Delete)

	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("PUT /api/tasks/{id}/status", s.taskH.SetStatus)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)

	mux.HandleFunc("POST /api/chat", s.chatH.Chat)
	mux.HandleFunc("GET /api/chat/history", s.chatH.History)

	mux.HandleFunc("GET /api/dashboard", s.dashboardH.Get)

	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	mux.HandleFunc("DELETE /api/push/subscriptions", s.pushH.Unsubscribe)

	mux.HandleFunc("POST /api/backups", s.backupH.Run)
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("GET /api/backups/status", s.backupH.GetStatus)
	mux.HandleFunc("GET /api/backups/{id}/download", s.backupH.Download)

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}

package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dukerupert/flourish/internal/backup"
	"github.com/dukerupert/flourish/internal/database"
	"github.com/dukerupert/flourish/internal/email"
	"github.com/dukerupert/flourish/internal/logging"
	"github.com/dukerupert/flourish/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("FLOURISH_LOG_LEVEL"), os.Getenv("FLOURISH_LOG_FORMAT"))

	port := envOr("FLOURISH_PORT", "8080")
	dbPath := envOr("FLOURISH_DB_PATH", "flourish.db")

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	emailClient := email.NewClient(
		os.Getenv("FLOURISH_POSTMARK_TOKEN"),
		envOr("FLOURISH_EMAIL_FROM", "hello@flourish.app"),
	)

	cfg := server.Config{
		OpenAIKey:       os.Getenv("FLOURISH_OPENAI_KEY"),
		VAPIDPublicKey:  os.Getenv("FLOURISH_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("FLOURISH_VAPID_PRIVATE_KEY"),
		ReminderHour:    envIntOr("FLOURISH_REMINDER_HOUR", 9),
		SecureCookies:   os.Getenv("FLOURISH_SECURE_COOKIES") == "true",
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  os.Getenv("FLOURISH_S3_ENDPOINT"),
				Bucket:    os.Getenv("FLOURISH_S3_BUCKET"),
				Region:    envOr("FLOURISH_S3_REGION", "auto"),
				AccessKey: os.Getenv("FLOURISH_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("FLOURISH_S3_SECRET_KEY"),
			},
			DBPath:        dbPath,
			Passphrase:    os.Getenv("FLOURISH_BACKUP_PASSPHRASE"),
			ScheduleHour:  envIntOr("FLOURISH_BACKUP_HOUR", 3),
			RetentionDays: envIntOr("FLOURISH_BACKUP_RETENTION_DAYS", 30),
		},
	}

	srv := server.New(db, emailClient, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(ctx)
		defer sched.Stop()
	}
	if mgr := srv.BackupManager(); mgr.Enabled() {
		mgr.Start(ctx)
		defer mgr.Stop()
	}

	go cleanupLoop(ctx, srv, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("flourish running", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

// cleanupLoop prunes expired sessions, used sign-in codes, and stale rate
// limiter entries once an hour.
func cleanupLoop(ctx context.Context, srv *server.Server, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := srv.SessionStore().DeleteExpired(); err != nil {
				logger.Error("cleanup sessions", "error", err)
			} else if n > 0 {
				logger.Info("cleaned up expired sessions", "count", n)
			}
			if n, err := srv.MagicLinkStore().DeleteExpired(); err != nil {
				logger.Error("cleanup sign-in codes", "error", err)
			} else if n > 0 {
				logger.Info("cleaned up expired sign-in codes", "count", n)
			}
			srv.RateLimiter().Cleanup()
		}
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

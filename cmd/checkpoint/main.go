package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/josplay/checkpoint/internal/catalog"
	"github.com/josplay/checkpoint/internal/config"
	"github.com/josplay/checkpoint/internal/database"
	"github.com/josplay/checkpoint/internal/email"
	"github.com/josplay/checkpoint/internal/logging"
	"github.com/josplay/checkpoint/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info", "text").Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cat, err := catalog.Load()
	if err != nil {
		logger.Error("load catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("catalog loaded", "games", len(cat.Slugs()), "achievements", cat.TotalAchievements())

	emailClient := email.NewClient(cfg.ResendAPIKey, cfg.EmailFrom)
	if !emailClient.Configured() {
		logger.Warn("email delivery not configured, magic links will not be sent")
	}

	srv := server.New(db, cfg, cat, emailClient, logger)

	// Expired sessions and magic links pile up otherwise
	cleanupDone := make(chan struct{})
	go runCleanup(srv, logger, cleanupDone)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	close(cleanupDone)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func runCleanup(srv *server.Server, logger *slog.Logger, done <-chan struct{}) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n, err := srv.SessionStore().DeleteExpired(); err != nil {
				logger.Error("session cleanup", "error", err)
			} else if n > 0 {
				logger.Debug("sessions cleaned", "count", n)
			}
			if n, err := srv.MagicLinkStore().DeleteExpired(); err != nil {
				logger.Error("magic link cleanup", "error", err)
			} else if n > 0 {
				logger.Debug("magic links cleaned", "count", n)
			}
			srv.RateLimiter().Cleanup()
		case <-done:
			return
		}
	}
}

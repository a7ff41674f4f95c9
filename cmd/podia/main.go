package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"podia/internal/config"
	"podia/internal/handler"
	"podia/internal/logging"
	"podia/internal/middleware"
	"podia/internal/service"
	"podia/internal/session"
	"podia/internal/store"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Podia - event marketplace backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PODIA_SESSION_SECRET        Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PODIA_DB_PATH               SQLite database path (default: ./data/podia.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PODIA_SERVER_PORT           Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PODIA_ENV                   Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PODIA_UPLOADS_DIR           Media upload directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PODIA_AUDIT_RETENTION_DAYS  Audit log retention (default: 90)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PODIA_DO_SEED               Seed the initial admin account (default: false)\n")
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("podia %s (%s)\n", appVersion, appGitCommit)
		return
	}

	// A missing .env file is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	setupLogger(cfg, nil)

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Re-install the logger with the audit mirror now that the database is up.
	setupLogger(cfg, db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	sm := session.New(db, cfg.IsDevelopment())
	auditService := service.NewAuditService(db)
	mediaService := service.NewMediaService(cfg.UploadsDir)
	protection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	scheduler := cron.New()
	retention := time.Duration(cfg.AuditRetentionDays) * 24 * time.Hour
	if _, err := scheduler.AddFunc("@daily", func() {
		if err := auditService.DeleteOld(context.Background(), retention); err != nil {
			slog.Error("audit retention job failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("scheduling audit retention: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.RequestPath)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())))
	r.Use(middleware.NewGlobalRateLimiter(100, 200).Middleware())
	r.Use(sm.LoadAndSave)
	r.Use(middleware.LoadAccount(sm, db))

	handler.New(db, sm, auditService, mediaService, protection).Routes(r)

	server := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", appVersion)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// setupLogger installs the default slog logger. With a database attached,
// warnings and errors are mirrored into the audit log.
func setupLogger(cfg *config.Config, db *sql.DB) {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var inner slog.Handler
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsDevelopment() {
		inner = slog.NewTextHandler(os.Stdout, opts)
	} else {
		inner = slog.NewJSONHandler(os.Stdout, opts)
	}

	if db != nil {
		slog.SetDefault(slog.New(logging.NewAuditHandler(inner, db)))
		return
	}
	slog.SetDefault(slog.New(inner))
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/miniuni/miniuni-web/internal/apiclient"
	"github.com/miniuni/miniuni-web/internal/config"
	"github.com/miniuni/miniuni-web/internal/handler"
	"github.com/miniuni/miniuni-web/internal/logger"
	"github.com/miniuni/miniuni-web/internal/metrics"
	"github.com/miniuni/miniuni-web/internal/router"
	"github.com/miniuni/miniuni-web/internal/session"
	"github.com/miniuni/miniuni-web/internal/validator"
	"github.com/miniuni/miniuni-web/internal/view"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("api", cfg.APIBaseURL).
		Str("log_level", cfg.LogLevel).
		Msg("Starting MiniUni web")

	if cfg.DemoLoginEnabled {
		log.Warn().Msg("Demo login is enabled; disable DEMO_LOGIN_ENABLED in production")
	}

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Session Backend ───────────────────────────────────────────────
	backend, closeBackend, err := session.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session backend")
	}
	defer closeBackend()

	// ─── Initialize Services ──────────────────────────────────────────
	m := metrics.New()
	api := apiclient.New(cfg.APIBaseURL,
		apiclient.WithMetrics(m),
		apiclient.WithLogger(log),
	)
	sessions := session.NewManager(backend, cfg.FlashTTL, m, log)
	guard := view.NewGuard()

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Dashboard: handler.NewDashboardHandler(api, sessions, guard, m, cfg.DemoLoginEnabled, log),
		Auth:      handler.NewAuthHandler(api, sessions, guard, m, cfg.DemoLoginEnabled, log),
		Student:   handler.NewStudentHandler(api, sessions, guard, log),
		Admin:     handler.NewAdminHandler(api, sessions, guard, log),
		System:    handler.NewSystemHandler(api, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r, err := router.SetupRouter(ctx, cfg, sessions, m, handlers, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up router")
	}

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// In-flight requests get 5s; their views are discarded once cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	cancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

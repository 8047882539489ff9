package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Askiater/speak-to-me/config"
	"github.com/Askiater/speak-to-me/internal/cleanup"
	"github.com/Askiater/speak-to-me/internal/postgres"
	"github.com/Askiater/speak-to-me/internal/registry"
	"github.com/Askiater/speak-to-me/internal/security"
	"github.com/Askiater/speak-to-me/internal/service"
	httpx "github.com/Askiater/speak-to-me/internal/transport/http"
	"github.com/Askiater/speak-to-me/internal/transport/ws"
	"github.com/Askiater/speak-to-me/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting speak-to-me",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// --- repos ---
	userRepo := postgres.NewUserRepository(db.Pool)
	ledgerRepo := postgres.NewLedgerRepository(db.Pool)

	// --- services ---
	signer := security.NewTokenSigner(cfg.Auth.JWTSecret, cfg.TokenTTL())
	authSvc := service.NewAuthService(userRepo, signer)
	if err := authSvc.EnsureAdmin(ctx, cfg.Auth.Admin.Username, cfg.Auth.Admin.Password); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	reg := registry.New()
	roomSvc := service.NewRoomService(reg, ledgerRepo)

	// --- signaling ---
	hub := ws.NewHub()
	relay := ws.NewRelay(hub, reg, ledgerRepo, cfg.Rooms.MaxParticipants)
	wsServer := ws.NewServer(hub, relay, authSvc)

	// --- cleanup scheduler ---
	sched := cleanup.NewScheduler(reg, relay, ledgerRepo, cfg.CleanupInterval(), cfg.IdleTimeout())
	schedCtx, stopSched := context.WithCancel(ctx)
	go sched.Run(schedCtx)

	// --- HTTP ---
	iceServers := make([]httpx.ICEServer, 0, len(cfg.TURN.ICEServers))
	for _, s := range cfg.TURN.ICEServers {
		iceServers = append(iceServers, httpx.ICEServer{
			URLs:       s.URLs,
			Username:   s.Username,
			Credential: s.Credential,
		})
	}
	handler := httpx.NewHandler(authSvc, roomSvc, iceServers, cfg.Logging.Env == "prod")
	router := httpx.NewRouter(handler, authSvc, wsServer, cfg.CORS.AllowedOrigin)
	httpSrv := &http.Server{
		Addr:        cfg.HTTP.Addr,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	stopSched()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}

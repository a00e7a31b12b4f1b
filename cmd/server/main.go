package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth_gate/internal/config"
	"auth_gate/internal/handler"
	"auth_gate/internal/logging"
	"auth_gate/internal/repository"
	"auth_gate/internal/service"
	"auth_gate/internal/utils"

	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	// Load .env file
	envErr := godotenv.Load()

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slogger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(slogger)
	log := logging.NewSlogLogger(slogger)
	if envErr != nil {
		log.Info(ctx, "no .env file found, relying on environment variables")
	}

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := config.RunMigrations(ctx, dbPool); err != nil {
		log.Error(ctx, "failed to migrate database", "error", err)
		os.Exit(1)
	}
	log.Info(ctx, "migrations applied")

	// --- Wiring ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTTTL)
	log.Info(ctx, "token service ready", "token_ttl", jwtUtil.TTL().String())
	userRepo := repository.NewUserRepository(dbPool)
	authService := service.NewAuthService(userRepo, jwtUtil, log, service.Options{
		InitialAdminEmail: cfg.InitialAdminEmail,
		BcryptCost:        cfg.BcryptCost,
	})
	authHandler := handler.NewAuthHandler(authService)

	router := handler.NewRouter(handler.RouterConfig{
		Auth:           authHandler,
		Verifier:       jwtUtil,
		AllowedOrigins: cfg.AllowedOrigins,
		Ping:           dbPool.Ping,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info(ctx, "server starting", "port", cfg.ServerPort, "allowed_origins", cfg.AllowedOrigins)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server forced to shutdown", "error", err)
	}

	log.Info(ctx, "server exiting")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"auth_gate/internal/client/api"
	"auth_gate/internal/client/cli"
	"auth_gate/internal/client/tokenstore"
	"auth_gate/internal/config"
	"auth_gate/internal/logging"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx))
}

func run(ctx context.Context) int {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}

	log := logging.NewSlogLogger(logging.New(os.Stderr, cfg.LogLevel, "text"))

	var store tokenstore.Store
	switch cfg.TokenStore {
	case "sqlite":
		s, err := tokenstore.OpenSQLiteStore(ctx, cfg.TokenPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "token store:", err)
			return 1
		}
		defer s.Close()
		store = s
	default:
		store = tokenstore.NewFileStore(cfg.TokenPath)
	}

	app := cli.New(api.New(cfg.APIURL, nil), store, os.Stdin, os.Stdout, log)
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/preston-bernstein/games-list-service/internal/config"
	"github.com/preston-bernstein/games-list-service/internal/logging"
	"github.com/preston-bernstein/games-list-service/internal/server"
)

const (
	appName    = "games-list-service"
	appVersion = "dev"
)

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logger := logging.NewLogger(logging.Config{Service: appName, Version: appVersion})
		logging.Error(logger, "invalid configuration", err)
		return 1
	}

	logger := logging.NewLogger(logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: appName,
		Version: appVersion,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.New(cfg, logger).Run(ctx, stop)
	return 0
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/preston-bernstein/scoreboard-service/internal/config"
	"github.com/preston-bernstein/scoreboard-service/internal/logging"
	"github.com/preston-bernstein/scoreboard-service/internal/server"
)

const (
	appVersion  = "dev"
	serviceName = "scoreboard-service"
)

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}

	cfg, cfgErr := config.Load()
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
		Version: appVersion,
		Output:  os.Stderr,
	})
	if cfgErr != nil {
		logging.Warn(logger, "invalid configuration, using defaults", "error", cfgErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, logger, os.Stdin, os.Stdout)
	if err := srv.Run(ctx); err != nil {
		logging.Error(logger, "scoreboard stopped with error", err)
		stop()
		os.Exit(1)
	}
}

package main

import (
	"context"

	"go.uber.org/zap"

	"evea/internal/config"
	"evea/internal/pkg/logger"
	"evea/internal/server"
)

type app struct {
	cfg   *config.Config
	log   *zap.Logger
	deps  server.Deps
	close func()
}

// boot loads config and opens the database and the other configured
// resources.
func boot(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	deps, closeDeps, err := server.Bootstrap(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:  cfg,
		log:  log,
		deps: deps,
		close: func() {
			closeDeps()
			_ = log.Sync()
		},
	}, nil
}

package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"evea/internal/config"
	"evea/internal/database"
	"evea/internal/modules/auth"
	"evea/internal/pkg/mailer"
	"evea/internal/pkg/queue"
	"evea/internal/pkg/storage"
)

// Bootstrap opens every external resource named by cfg. The returned close
// func releases them in reverse order.
func Bootstrap(ctx context.Context, cfg *config.Config, log *zap.Logger) (Deps, func(), error) {
	d := Deps{Config: cfg, Log: log}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return d, nil, fmt.Errorf("connect database: %w", err)
	}
	d.DB = db

	if d.Mailer, err = mailer.New(cfg.Mail, log); err != nil {
		return d, nil, err
	}
	if d.Store, err = storage.New(ctx, cfg.Storage); err != nil {
		return d, nil, err
	}

	d.Redis = config.NewRedisClient(cfg.Redis)
	if d.Redis == nil {
		log.Info("redis disabled: rate limiting and browse cache are off")
	}
	d.Publisher = queue.New(cfg.AMQP, log)
	d.Google = auth.NewGoogleExchanger(cfg.Google)

	closeAll := func() {
		if err := d.Publisher.Close(); err != nil {
			log.Warn("close broker", zap.Error(err))
		}
		if d.Redis != nil {
			_ = d.Redis.Close()
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return d, closeAll, nil
}

package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"evea/internal/modules/notification"
	"evea/internal/server"
)

var (
	workerInterval time.Duration
	workerOnce     bool
)

// evea worker
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Deliver outbox events (emails, notifications, broker messages)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := boot(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		// No websocket clients live in this process; users see these
		// notifications on their next fetch.
		notifier := notification.NewService(a.deps.DB, nil, a.log)
		disp := server.NewDispatcher(a.deps, notifier)

		if workerOnce {
			n, err := disp.RunOnce(ctx)
			a.log.Info("outbox batch processed", zap.Int("events", n))
			return err
		}

		interval := workerInterval
		if interval <= 0 {
			interval = a.cfg.Outbox.Interval
		}
		disp.Run(ctx, interval)
		return nil
	},
}

func init() {
	workerCmd.Flags().DurationVar(&workerInterval, "interval", 0, "poll interval (default $OUTBOX_INTERVAL)")
	workerCmd.Flags().BoolVar(&workerOnce, "once", false, "process one batch and exit")
}


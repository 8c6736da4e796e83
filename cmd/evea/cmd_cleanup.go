package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"evea/internal/outbox"
	"evea/internal/repository"
)

var (
	cleanupOutboxAge time.Duration
	cleanupDedupe    bool
)

// evea cleanup
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired verification tokens and delivered outbox events",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		now := time.Now().UTC()

		tokens, err := repository.NewVerificationTokenRepository(a.deps.DB).DeleteExpired(ctx, now)
		if err != nil {
			return fmt.Errorf("cleanup verification tokens: %w", err)
		}
		events, err := outbox.PurgeSent(ctx, a.deps.DB, now.Add(-cleanupOutboxAge))
		if err != nil {
			return fmt.Errorf("cleanup outbox: %w", err)
		}
		fmt.Printf("Cleanup completed: verification_tokens=%d outbox_events=%d\n", tokens, events)

		if cleanupDedupe {
			n, err := repository.NewVendorCardRepository(a.deps.DB).DedupeByVendor(ctx)
			if err != nil {
				return fmt.Errorf("dedupe vendor cards: %w", err)
			}
			fmt.Printf("Duplicate vendor cards removed: %d\n", n)
		}
		return nil
	},
}

func init() {
	cleanupCmd.Flags().DurationVar(&cleanupOutboxAge, "outbox-age", 7*24*time.Hour, "keep delivered outbox events younger than this")
	cleanupCmd.Flags().BoolVar(&cleanupDedupe, "dedupe-cards", false, "keep only the newest vendor card per vendor")
}

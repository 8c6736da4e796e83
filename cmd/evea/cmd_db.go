package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"evea/internal/database"
	"evea/internal/seed"
)

// evea migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every table",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := database.Migrate(a.deps.DB); err != nil {
			return err
		}
		fmt.Println("Migrations applied.")
		return nil
	},
}

var (
	seedAdminEmail    string
	seedAdminPassword string
	seedDemo          bool
)

// evea seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load categories, the first admin and optional demo vendors",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := database.Migrate(a.deps.DB); err != nil {
			return err
		}
		pass := seedAdminPassword
		if pass == "" {
			pass = os.Getenv("SEED_ADMIN_PASSWORD")
		}
		res, err := seed.Run(cmd.Context(), a.deps.DB, seed.Options{
			AdminEmail:    seedAdminEmail,
			AdminPassword: pass,
			Demo:          seedDemo,
		}, a.log)
		if err != nil {
			return err
		}

		fmt.Printf("Categories: %d\n", res.Categories)
		if res.AdminCreated {
			fmt.Printf("Admin created: %s\n", seedAdminEmail)
		}
		if seedDemo {
			fmt.Printf("Demo vendors added: %d\n", res.DemoVendors)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", "admin@evea.in", "email of the admin account to create (empty skips)")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "", "admin password (default $SEED_ADMIN_PASSWORD)")
	seedCmd.Flags().BoolVar(&seedDemo, "demo", false, "add demo vendors with published cards")
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/halchash/storefront/internal/config"
	"github.com/halchash/storefront/internal/database"
	"github.com/halchash/storefront/internal/model"
	"github.com/halchash/storefront/internal/repository"
	"github.com/halchash/storefront/internal/seed"
	"github.com/halchash/storefront/internal/utils"
)

// openDB connects with the DB_* settings only, so maintenance commands do
// not require the HTTP configuration.
func openDB() (*sql.DB, error) {
	config.LoadDotEnv()
	setupLogger(os.Getenv("LOG_LEVEL"))
	c := config.LoadDB()
	return database.Open(c.User, c.Pass, c.Host, c.Port, c.Name)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			applied, err := database.Migrate(cmdContext(cmd), db)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", strings.Join(applied, ", "))
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a starter catalog from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := seed.LoadCatalog(file)
			if err != nil {
				return err
			}
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			res, err := seed.Apply(cmdContext(cmd), seed.NewSQLStore(db), catalog)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d categories and %d products (%d skipped)\n",
				res.CategoriesCreated, res.ProductsCreated, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "data/catalog.yaml", "Seed catalog (YAML)")
	return cmd
}

func createAdminCmd() *cobra.Command {
	var a model.Admin
	var password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a back-office account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.Username = strings.TrimSpace(a.Username)
			a.Email = utils.NormalizeEmail(a.Email)
			if a.Username == "" || !utils.ValidEmail(a.Email) {
				return errors.New("a username and a valid email are required")
			}
			if len(password) < utils.MinPasswordLength {
				return fmt.Errorf("password must be at least %d characters", utils.MinPasswordLength)
			}
			hash, err := utils.HashPassword(password, 0)
			if err != nil {
				return err
			}
			a.PasswordHash = hash

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if err := repository.NewAdminRepo(db).Create(cmdContext(cmd), &a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %q (id %d)\n", a.Username, a.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&a.Username, "username", "", "Login name (required)")
	f.StringVar(&a.Email, "email", "", "Email address (required)")
	f.StringVar(&password, "password", "", "Password, at least 6 characters (required)")
	f.StringVar(&a.FullName, "full-name", "", "Display name")
	f.StringVar(&a.Role, "role", "admin", "Back-office grade: admin or super_admin")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

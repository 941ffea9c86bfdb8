// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/carterperez-dev/templates/classifieds/internal/auth"
	"github.com/carterperez-dev/templates/classifieds/internal/config"
	"github.com/carterperez-dev/templates/classifieds/internal/core"
	"github.com/carterperez-dev/templates/classifieds/internal/user"
	"github.com/carterperez-dev/templates/classifieds/migrations"
)

// seed creates or promotes the administrator account. Public registration
// only ever yields USER accounts.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin email")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password, used only when the account is new")
	firstName := flag.String("first-name", "Admin", "admin first name")
	lastName := flag.String("last-name", "User", "admin last name")
	phone := flag.String("phone", "+10000000000", "admin phone")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	reg := auth.Registration{
		Email:     *email,
		FirstName: *firstName,
		LastName:  *lastName,
		Phone:     *phone,
	}

	if err := run(*configPath, reg, *password, logger); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(
	configPath string,
	reg auth.Registration,
	password string,
	logger *slog.Logger,
) error {
	if reg.Email == "" {
		return errors.New("admin email is required (-email or ADMIN_EMAIL)")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // process exits right after

	if _, err := core.Migrate(cfg.Database.URL, migrations.FS); err != nil {
		return err
	}

	// EnsureAdmin never touches avatars, so no asset store is wired.
	svc := user.NewService(
		user.NewRepository(db.DB),
		core.Argon2Hasher{},
		nil,
		cfg.Storage.MaxUploadBytes,
		logger,
	)

	admin, created, err := svc.EnsureAdmin(ctx, reg, password)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	if created {
		logger.Info("admin created", "user_id", admin.ID, "email", admin.Email)
	} else {
		logger.Info("admin already present", "user_id", admin.ID, "email", admin.Email)
	}

	return nil
}

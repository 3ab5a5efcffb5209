// Command createadmin creates the bootstrap admin account if it does not
// exist yet.
package main

import (
	"context"
	"flag"
	"os"

	"lostfound/internal/config"
	"lostfound/internal/database"
	"lostfound/internal/repositories"
	"lostfound/internal/services"
	"lostfound/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "createadmin"}).Error(context.Background(), "invalid configuration", err)
		os.Exit(1)
	}

	name := flag.String("name", cfg.AdminName, "admin display name")
	email := flag.String("email", cfg.AdminEmail, "admin email")
	password := flag.String("password", cfg.AdminPassword, "admin password")
	flag.Parse()

	logg := logger.New(logger.Options{
		ServiceName: "createadmin",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})
	ctx := logg.WithField(context.Background(), "email", *email)

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logg.Error(ctx, "failed to open database", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logg.Error(ctx, "failed to migrate database", err)
		os.Exit(1)
	}

	store := repositories.NewGORMStore(db)
	auth := services.NewAuthService(store.Users(), cfg.JWTSecret, cfg.JWTTTL, logg)
	admin, created, err := auth.EnsureAdmin(ctx, *name, *email, *password)
	if err != nil {
		logg.Error(ctx, "failed to create admin", err)
		os.Exit(1)
	}
	if !created {
		logg.Info(logg.WithField(ctx, "role", admin.Role), "account already exists")
		return
	}
	logg.Info(logg.WithField(ctx, "user_id", admin.ID), "admin account created")
}

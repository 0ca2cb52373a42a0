package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"avodah/internal/auth"
	"avodah/internal/config"
	"avodah/internal/db"
	apperrors "avodah/internal/errors"
	"avodah/internal/model"
	"avodah/internal/rbac"
	"avodah/internal/repository"
)

// seed creates the bootstrap developer account or promotes an existing one.
// No API path can grant the top rank to the first account, so this is how a
// fresh deployment gets its administrator.
func main() {
	log.Info("Starting seed script...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Info("Database migrations completed")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created, err := seedDeveloper(ctx,
		repository.NewUserRepository(gormDB, cfg.StoreTimeout),
		auth.NewPasswordHasher(cfg.BcryptCost),
		cfg.SeedAdminUsername, cfg.SeedAdminEmail, cfg.SeedAdminPassword,
	)
	if err != nil {
		log.Fatalf("Failed to seed developer: %v", err)
	}
	if created {
		log.Infof("Developer %s created", cfg.SeedAdminEmail)
	} else {
		log.Infof("Developer %s promoted", cfg.SeedAdminEmail)
	}
}

// seedDeveloper reports whether a new account was created. An existing
// account matched by email keeps its username and gets the top rank; its
// password is replaced only when one is supplied.
func seedDeveloper(ctx context.Context, repo repository.UserRepository, hasher *auth.PasswordHasher, username, email, password string) (bool, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if email == "" {
		return false, errors.New("SEED_ADMIN_EMAIL is required")
	}

	existing, err := repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		fields := map[string]interface{}{
			"role":          rbac.Developer.Label(),
			"role_position": int(rbac.Developer),
		}
		if password != "" {
			hash, err := hasher.Hash(password)
			if err != nil {
				return false, err
			}
			fields["password"] = hash
		}
		if err := repo.UpdateFields(ctx, existing.ID, fields); err != nil {
			return false, fmt.Errorf("promote %s: %w", email, err)
		}
		return false, nil
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return false, fmt.Errorf("find %s: %w", email, err)
	}

	if username == "" || password == "" {
		return false, errors.New("SEED_ADMIN_USERNAME and SEED_ADMIN_PASSWORD are required to create the developer")
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return false, err
	}
	user := &model.User{Username: username, Email: email, PasswordHash: hash}
	user.SetRank(rbac.Developer)
	if err := repo.Create(ctx, user); err != nil {
		return false, fmt.Errorf("create %s: %w", email, err)
	}
	return true, nil
}

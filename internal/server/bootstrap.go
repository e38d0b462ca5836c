package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"timeledger/internal/auth"
	"timeledger/internal/models"
	"timeledger/internal/repository"
)

// EnsureBootstrapAdmin creates a first admin account on an empty user
// table, so a fresh deployment can obtain a token without touching the
// database by hand. It is a no-op once any user exists, and disabled when
// no password is configured.
func EnsureBootstrapAdmin(ctx context.Context, users *repository.UserRepository, username, password string, logger *zap.Logger) error {
	existing, err := users.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for existing users: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	if password == "" {
		logger.Warn("User table is empty and no bootstrap admin password is configured; " +
			"set TIMELEDGER_BOOTSTRAP_ADMIN_PASSWORD to create the first admin")
		return nil
	}
	if username == "" {
		username = "admin"
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap admin password: %w", err)
	}

	admin := &models.User{
		Username:     username,
		Email:        username + "@localhost",
		FullName:     "Bootstrap Administrator",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	logger.Info("Created bootstrap admin account", zap.String("username", username))
	return nil
}

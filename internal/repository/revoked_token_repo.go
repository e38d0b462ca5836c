package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"timeledger/pkg/database"
)

// RevokedTokenRepository tracks JWT IDs invalidated before their natural
// expiry (logout, forced revocation). Rows are kept only until the token
// would have expired anyway; Sweep removes the rest.
type RevokedTokenRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRevokedTokenRepository creates a new revoked token repository
func NewRevokedTokenRepository(db *sql.DB, logger *zap.Logger) *RevokedTokenRepository {
	return &RevokedTokenRepository{
		db:     db,
		logger: logger,
	}
}

// Revoke records a token ID as revoked until expiresAt. Revoking the same
// token twice is harmless.
func (r *RevokedTokenRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	query := `
		INSERT INTO revoked_tokens (token_id, expires_at) VALUES (?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, tokenID, expiresAt.UTC())
	if err != nil {
		err = database.MapConstraintError(err)
		if errors.Is(err, database.ErrDuplicate) {
			return nil
		}
		r.logger.Error("Failed to revoke token", zap.String("token_id", tokenID), zap.Error(err))
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token ID has been revoked
func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM revoked_tokens WHERE token_id = ?", tokenID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		r.logger.Error("Failed to check token revocation", zap.String("token_id", tokenID), zap.Error(err))
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return true, nil
}

// Sweep deletes revocation rows whose tokens have expired on their own
func (r *RevokedTokenRepository) Sweep(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM revoked_tokens WHERE expires_at < ?", now.UTC())
	if err != nil {
		r.logger.Error("Failed to sweep revoked tokens", zap.Error(err))
		return 0, fmt.Errorf("failed to sweep revoked tokens: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if removed > 0 {
		r.logger.Debug("Swept expired token revocations", zap.Int64("removed", removed))
	}
	return removed, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"timeledger/internal/models"
	"timeledger/pkg/database"
)

// UserRepository handles user database operations
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user. Username and email are unique.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	// A zero PasswordChangedAt would make the password expired from the
	// first login; a fresh credential starts its age at creation.
	if user.PasswordChangedAt.IsZero() {
		user.PasswordChangedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (
			username, email, full_name, password_hash, role, active, password_changed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.Role,
		user.Active,
		user.PasswordChangedAt,
	)
	if err != nil {
		err = database.MapConstraintError(err)
		r.logger.Error("Failed to create user", zap.String("username", user.Username), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = id
	return nil
}

const userSelect = `
	SELECT id, username, email, full_name, password_hash, role, active,
		password_changed_at, created_at, updated_at
	FROM users
`

// GetByID retrieves one user, or ErrNotFound
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := r.scanOne(r.db.QueryRowContext(ctx, userSelect+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, database.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves one user by username, or ErrNotFound
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := r.scanOne(r.db.QueryRowContext(ctx, userSelect+" WHERE username = ?", username))
	if err == sql.ErrNoRows {
		return nil, database.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get user by username", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// List retrieves all users ordered by username
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, userSelect+" ORDER BY username")
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Update rewrites profile fields, role and active flag (not the password)
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = ?, full_name = ?, role = ?, active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.FullName,
		user.Role,
		user.Active,
		user.ID,
	)
	if err != nil {
		err = database.MapConstraintError(err)
		r.logger.Error("Failed to update user", zap.Int64("id", user.ID), zap.Error(err))
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireRowAffected(result)
}

// UpdatePassword stores a new password hash and resets the expiry clock
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = ?, password_changed_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		r.logger.Error("Failed to update password", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireRowAffected(result)
}

// Delete removes a user
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete user", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRowAffected(result)
}

func (r *UserRepository) scanOne(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.Role,
		&user.Active,
		&user.PasswordChangedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

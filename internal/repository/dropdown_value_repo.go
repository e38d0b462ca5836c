package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"timeledger/internal/models"
	"timeledger/pkg/database"
)

// DropdownValueRepository handles dropdown value database operations.
// (category, subcategory, item_value) is unique; Create maps the constraint
// violation to database.ErrDuplicate.
type DropdownValueRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDropdownValueRepository creates a new dropdown value repository
func NewDropdownValueRepository(db *sql.DB, logger *zap.Logger) *DropdownValueRepository {
	return &DropdownValueRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new dropdown value
func (r *DropdownValueRepository) Create(ctx context.Context, value *models.DropdownValue) error {
	query := `
		INSERT INTO dropdown_values (
			category, subcategory, item_value, display_order, active, all_users
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		value.Category,
		value.Subcategory,
		value.ItemValue,
		value.DisplayOrder,
		value.Active,
		value.AllUsers,
	)
	if err != nil {
		err = database.MapConstraintError(err)
		if !errors.Is(err, database.ErrDuplicate) {
			r.logger.Error("Failed to create dropdown value", zap.Error(err))
		}
		return fmt.Errorf("failed to create dropdown value: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	value.ID = id
	return nil
}

// GetByID retrieves one dropdown value, or ErrNotFound
func (r *DropdownValueRepository) GetByID(ctx context.Context, id int64) (*models.DropdownValue, error) {
	query := `
		SELECT id, category, subcategory, item_value, display_order, active,
			all_users, created_at, updated_at
		FROM dropdown_values
		WHERE id = ?
	`

	value, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, database.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get dropdown value", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get dropdown value: %w", err)
	}
	return value, nil
}

// List retrieves dropdown values, optionally restricted to one category,
// ordered for display.
func (r *DropdownValueRepository) List(ctx context.Context, category string) ([]*models.DropdownValue, error) {
	query := `
		SELECT id, category, subcategory, item_value, display_order, active,
			all_users, created_at, updated_at
		FROM dropdown_values
	`
	var args []interface{}
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY category, subcategory, display_order, item_value"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list dropdown values", zap.Error(err))
		return nil, fmt.Errorf("failed to list dropdown values: %w", err)
	}
	defer rows.Close()

	var values []*models.DropdownValue
	for rows.Next() {
		value, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dropdown value: %w", err)
		}
		values = append(values, value)
	}
	return values, rows.Err()
}

// Update rewrites all mutable fields of an existing dropdown value
func (r *DropdownValueRepository) Update(ctx context.Context, value *models.DropdownValue) error {
	query := `
		UPDATE dropdown_values
		SET category = ?, subcategory = ?, item_value = ?, display_order = ?,
			active = ?, all_users = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		value.Category,
		value.Subcategory,
		value.ItemValue,
		value.DisplayOrder,
		value.Active,
		value.AllUsers,
		value.ID,
	)
	if err != nil {
		err = database.MapConstraintError(err)
		r.logger.Error("Failed to update dropdown value", zap.Int64("id", value.ID), zap.Error(err))
		return fmt.Errorf("failed to update dropdown value: %w", err)
	}
	return requireRowAffected(result)
}

// Delete removes a dropdown value
func (r *DropdownValueRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM dropdown_values WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete dropdown value", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete dropdown value: %w", err)
	}
	return requireRowAffected(result)
}

func (r *DropdownValueRepository) scanOne(row rowScanner) (*models.DropdownValue, error) {
	var value models.DropdownValue
	err := row.Scan(
		&value.ID,
		&value.Category,
		&value.Subcategory,
		&value.ItemValue,
		&value.DisplayOrder,
		&value.Active,
		&value.AllUsers,
		&value.CreatedAt,
		&value.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

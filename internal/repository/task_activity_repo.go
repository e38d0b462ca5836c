package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"timeledger/internal/models"
	"timeledger/pkg/database"
)

const dateLayout = "2006-01-02"

// TaskActivityRepository handles task activity database operations
type TaskActivityRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTaskActivityRepository creates a new task activity repository
func NewTaskActivityRepository(db *sql.DB, logger *zap.Logger) *TaskActivityRepository {
	return &TaskActivityRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new task activity
func (r *TaskActivityRepository) Create(ctx context.Context, activity *models.TaskActivity) error {
	query := `
		INSERT INTO task_activities (
			task_date, client, project, phase, hours, details, username
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		activity.TaskDate.Format(dateLayout),
		activity.Client,
		activity.Project,
		activity.Phase,
		activity.Hours.String(),
		activity.Details,
		activity.Username,
	)
	if err != nil {
		err = database.MapConstraintError(err)
		r.logger.Error("Failed to create task activity", zap.Error(err))
		return fmt.Errorf("failed to create task activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	activity.ID = id
	return nil
}

// GetByID retrieves one task activity, or ErrNotFound
func (r *TaskActivityRepository) GetByID(ctx context.Context, id int64) (*models.TaskActivity, error) {
	query := `
		SELECT id, task_date, client, project, phase, hours, details, username,
			created_at, updated_at
		FROM task_activities
		WHERE id = ?
	`

	activity, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, database.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get task activity", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get task activity: %w", err)
	}
	return activity, nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type TaskActivityFilter struct {
	Username string
	From     time.Time
	To       time.Time
}

// List retrieves task activities matching the filter, newest date first.
func (r *TaskActivityRepository) List(ctx context.Context, filter TaskActivityFilter) ([]*models.TaskActivity, error) {
	query := `
		SELECT id, task_date, client, project, phase, hours, details, username,
			created_at, updated_at
		FROM task_activities
		WHERE 1=1
	`
	var args []interface{}

	if filter.Username != "" {
		query += " AND username = ?"
		args = append(args, filter.Username)
	}
	if !filter.From.IsZero() {
		query += " AND task_date >= ?"
		args = append(args, filter.From.Format(dateLayout))
	}
	if !filter.To.IsZero() {
		query += " AND task_date <= ?"
		args = append(args, filter.To.Format(dateLayout))
	}
	query += " ORDER BY task_date DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list task activities", zap.Error(err))
		return nil, fmt.Errorf("failed to list task activities: %w", err)
	}
	defer rows.Close()

	var activities []*models.TaskActivity
	for rows.Next() {
		activity, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task activity: %w", err)
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

// Update rewrites all mutable fields of an existing activity
func (r *TaskActivityRepository) Update(ctx context.Context, activity *models.TaskActivity) error {
	query := `
		UPDATE task_activities
		SET task_date = ?, client = ?, project = ?, phase = ?, hours = ?,
			details = ?, username = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		activity.TaskDate.Format(dateLayout),
		activity.Client,
		activity.Project,
		activity.Phase,
		activity.Hours.String(),
		activity.Details,
		activity.Username,
		activity.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update task activity", zap.Int64("id", activity.ID), zap.Error(err))
		return fmt.Errorf("failed to update task activity: %w", err)
	}
	return requireRowAffected(result)
}

// Delete removes a task activity
func (r *TaskActivityRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM task_activities WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete task activity", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete task activity: %w", err)
	}
	return requireRowAffected(result)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *TaskActivityRepository) scanOne(row rowScanner) (*models.TaskActivity, error) {
	var activity models.TaskActivity
	var taskDate, hours string

	err := row.Scan(
		&activity.ID,
		&taskDate,
		&activity.Client,
		&activity.Project,
		&activity.Phase,
		&hours,
		&activity.Details,
		&activity.Username,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	activity.TaskDate, err = time.Parse(dateLayout, taskDate)
	if err != nil {
		return nil, fmt.Errorf("corrupt task_date %q: %w", taskDate, err)
	}
	activity.Hours, err = decimal.NewFromString(hours)
	if err != nil {
		return nil, fmt.Errorf("corrupt hours %q: %w", hours, err)
	}
	return &activity, nil
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return database.ErrNotFound
	}
	return nil
}

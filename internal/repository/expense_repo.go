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

// ExpenseRepository handles expense database operations
type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sql.DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new expense
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	query := `
		INSERT INTO expenses (
			username, client, project, expense_date, expense_type, description,
			amount, currency, payment_method, vendor, reference_no, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		expense.Username,
		expense.Client,
		expense.Project,
		expense.ExpenseDate.Format(dateLayout),
		expense.ExpenseType,
		expense.Description,
		expense.Amount.String(),
		expense.Currency,
		expense.PaymentMethod,
		expense.Vendor,
		expense.ReferenceNo,
		expense.Status,
	)
	if err != nil {
		err = database.MapConstraintError(err)
		r.logger.Error("Failed to create expense", zap.Error(err))
		return fmt.Errorf("failed to create expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	expense.ID = id
	return nil
}

// GetByID retrieves one expense, or ErrNotFound
func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*models.Expense, error) {
	query := expenseSelect + " WHERE id = ?"

	expense, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, database.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get expense", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// ExpenseFilter narrows List results. Zero values mean "no filter".
type ExpenseFilter struct {
	Username string
	Status   string
}

// List retrieves expenses matching the filter, newest date first.
func (r *ExpenseRepository) List(ctx context.Context, filter ExpenseFilter) ([]*models.Expense, error) {
	query := expenseSelect + " WHERE 1=1"
	var args []interface{}

	if filter.Username != "" {
		query += " AND username = ?"
		args = append(args, filter.Username)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY expense_date DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

// Update rewrites all mutable fields of an existing expense
func (r *ExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	query := `
		UPDATE expenses
		SET username = ?, client = ?, project = ?, expense_date = ?,
			expense_type = ?, description = ?, amount = ?, currency = ?,
			payment_method = ?, vendor = ?, reference_no = ?, status = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		expense.Username,
		expense.Client,
		expense.Project,
		expense.ExpenseDate.Format(dateLayout),
		expense.ExpenseType,
		expense.Description,
		expense.Amount.String(),
		expense.Currency,
		expense.PaymentMethod,
		expense.Vendor,
		expense.ReferenceNo,
		expense.Status,
		expense.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update expense", zap.Int64("id", expense.ID), zap.Error(err))
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return requireRowAffected(result)
}

// UpdateStatus moves an expense to a new status
func (r *ExpenseRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `
		UPDATE expenses
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update expense status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update expense status: %w", err)
	}
	return requireRowAffected(result)
}

// UpdateReceiptKey attaches a stored receipt to an expense
func (r *ExpenseRepository) UpdateReceiptKey(ctx context.Context, id int64, key string) error {
	query := `
		UPDATE expenses
		SET receipt_key = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, key, id)
	if err != nil {
		r.logger.Error("Failed to update receipt key", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update receipt key: %w", err)
	}
	return requireRowAffected(result)
}

// Delete removes an expense
func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete expense", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireRowAffected(result)
}

const expenseSelect = `
	SELECT id, username, client, project, expense_date, expense_type,
		description, amount, currency, payment_method, vendor, reference_no,
		status, receipt_key, created_at, updated_at
	FROM expenses
`

func (r *ExpenseRepository) scanOne(row rowScanner) (*models.Expense, error) {
	var expense models.Expense
	var expenseDate, amount string
	var receiptKey sql.NullString

	err := row.Scan(
		&expense.ID,
		&expense.Username,
		&expense.Client,
		&expense.Project,
		&expenseDate,
		&expense.ExpenseType,
		&expense.Description,
		&amount,
		&expense.Currency,
		&expense.PaymentMethod,
		&expense.Vendor,
		&expense.ReferenceNo,
		&expense.Status,
		&receiptKey,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	expense.ExpenseDate, err = time.Parse(dateLayout, expenseDate)
	if err != nil {
		return nil, fmt.Errorf("corrupt expense_date %q: %w", expenseDate, err)
	}
	expense.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount %q: %w", amount, err)
	}
	if receiptKey.Valid {
		expense.ReceiptKey = receiptKey.String
	}
	return &expense, nil
}

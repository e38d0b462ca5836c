package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timeledger/internal/models"
	"timeledger/pkg/database"
)

// newTestDB opens an in-memory database and applies the real migrations.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{
		Path:         ":memory:",
		MaxOpenConns: 1, // each in-memory connection is its own database
		MaxIdleConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrator := database.NewMigrator(db, logger)
	require.NoError(t, migrator.RunMigrations("../../migrations"))

	return db
}

func TestTaskActivityRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskActivityRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	activity := &models.TaskActivity{
		TaskDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Client:   "Acme",
		Project:  "Website",
		Phase:    "Dev",
		Hours:    decimal.RequireFromString("8.00"),
		Details:  "sprint work",
		Username: "jdoe",
	}

	require.NoError(t, repo.Create(ctx, activity))
	require.NotZero(t, activity.ID)

	got, err := repo.GetByID(ctx, activity.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Client)
	assert.True(t, got.Hours.Equal(activity.Hours))
	assert.True(t, got.TaskDate.Equal(activity.TaskDate))
}

func TestTaskActivityRepository_ListFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskActivityRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	for i, username := range []string{"jdoe", "jdoe", "asmith"} {
		require.NoError(t, repo.Create(ctx, &models.TaskActivity{
			TaskDate: time.Date(2026, 1, 10+i, 0, 0, 0, 0, time.UTC),
			Hours:    decimal.NewFromInt(1),
			Username: username,
		}))
	}

	byUser, err := repo.List(ctx, TaskActivityFilter{Username: "jdoe"})
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byRange, err := repo.List(ctx, TaskActivityFilter{
		From: time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, byRange, 2)
}

func TestExpenseRepository_StatusAndReceipt(t *testing.T) {
	db := newTestDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	expense := &models.Expense{
		Username:    "jdoe",
		ExpenseDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("19.99"),
		Currency:    "USD",
		Status:      models.ExpenseStatusDraft,
	}
	require.NoError(t, repo.Create(ctx, expense))

	require.NoError(t, repo.UpdateStatus(ctx, expense.ID, models.ExpenseStatusSubmitted))
	require.NoError(t, repo.UpdateReceiptKey(ctx, expense.ID, "receipts/abc.pdf"))

	got, err := repo.GetByID(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseStatusSubmitted, got.Status)
	assert.Equal(t, "receipts/abc.pdf", got.ReceiptKey)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestDropdownValueRepository_DuplicateNaturalKey(t *testing.T) {
	db := newTestDB(t)
	repo := NewDropdownValueRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	first := &models.DropdownValue{
		Category: "expensetype", ItemValue: "Travel", Active: true,
	}
	require.NoError(t, repo.Create(ctx, first))

	second := &models.DropdownValue{
		Category: "expensetype", ItemValue: "Travel", Active: true,
	}
	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, database.ErrDuplicate)

	// Different subcategory is a different natural key.
	third := &models.DropdownValue{
		Category: "expensetype", Subcategory: "air", ItemValue: "Travel",
	}
	assert.NoError(t, repo.Create(ctx, third))
}

func TestUserRepository_PasswordLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	user := &models.User{
		Username:          "jdoe",
		Email:             "jdoe@example.com",
		PasswordHash:      "hash-one",
		Role:              models.RoleUser,
		Active:            true,
		PasswordChangedAt: time.Now().Add(-100 * 24 * time.Hour),
	}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByUsername(ctx, "jdoe")
	require.NoError(t, err)
	assert.True(t, got.PasswordExpired(90*24*time.Hour, time.Now()))

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "hash-two"))

	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-two", got.PasswordHash)
	assert.False(t, got.PasswordExpired(90*24*time.Hour, time.Now()))

	dup := &models.User{
		Username: "jdoe", Email: "other@example.com",
		PasswordHash: "x", Role: models.RoleUser,
		PasswordChangedAt: time.Now(),
	}
	assert.ErrorIs(t, repo.Create(ctx, dup), database.ErrDuplicate)
}

func TestRevokedTokenRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewRevokedTokenRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Revoke(ctx, "token-1", time.Now().Add(time.Hour)))
	require.NoError(t, repo.Revoke(ctx, "token-1", time.Now().Add(time.Hour))) // idempotent

	revoked, err := repo.IsRevoked(ctx, "token-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = repo.IsRevoked(ctx, "token-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.Revoke(ctx, "token-old", time.Now().Add(-time.Hour)))
	removed, err := repo.Sweep(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestUserRepository_CreateDefaultsPasswordAge(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	// No PasswordChangedAt set: the credential age starts now, not at the
	// zero time.
	user := &models.User{
		Username:     "fresh",
		Email:        "fresh@example.com",
		PasswordHash: "hash",
		Role:         models.RoleUser,
		Active:       true,
	}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByUsername(ctx, "fresh")
	require.NoError(t, err)
	assert.False(t, got.PasswordChangedAt.IsZero())
	assert.False(t, got.PasswordExpired(90*24*time.Hour, time.Now()))
}

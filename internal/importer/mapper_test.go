package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeledger/internal/models"
)

func record(pairs map[string]string) Record {
	headers := make([]string, 0, len(pairs))
	values := make([]string, 0, len(pairs))
	for k, v := range pairs {
		headers = append(headers, k)
		values = append(values, v)
	}
	return NewRecord(2, normalizeHeaders(headers), values)
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		input string
		want  time.Time
	}{
		{"2026-01-15", time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"01/16/2026", time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)},
		{"1/5/2026", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"15-Mar-2026", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseDate(tc.input)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got))
		})
	}

	t.Run("exhausting all formats fails", func(t *testing.T) {
		_, err := ParseDate("15.01.2026")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "accepted formats")
	})
}

func TestMapTaskActivity(t *testing.T) {
	t.Run("maps all fields", func(t *testing.T) {
		rec := record(map[string]string{
			"Task_Date": "2026-01-15",
			"Client":    "Acme",
			"Project":   "Website",
			"Phase":     "Dev",
			"TaskHours": "8.00",
			"Username":  "jdoe",
			"Details":   "sprint work",
		})

		activity, err := MapTaskActivity(rec, "")
		require.NoError(t, err)

		assert.Equal(t, "Acme", activity.Client)
		assert.Equal(t, "jdoe", activity.Username)
		assert.Equal(t, "8", activity.Hours.String())
		assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), activity.TaskDate)
	})

	t.Run("header aliasing is case and separator insensitive", func(t *testing.T) {
		rec := record(map[string]string{
			"task date": "2026-01-15",
			"HOURS":     "2.5",
			"user":      "jdoe",
		})

		activity, err := MapTaskActivity(rec, "")
		require.NoError(t, err)
		assert.Equal(t, "2.5", activity.Hours.String())
	})

	t.Run("username falls back to uploader", func(t *testing.T) {
		rec := record(map[string]string{"taskdate": "2026-01-15", "taskhours": "1"})

		activity, err := MapTaskActivity(rec, "uploader")
		require.NoError(t, err)
		assert.Equal(t, "uploader", activity.Username)
	})

	t.Run("missing date names the field", func(t *testing.T) {
		rec := record(map[string]string{"taskhours": "1", "username": "jdoe"})

		_, err := MapTaskActivity(rec, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"taskdate"`)
	})

	t.Run("malformed hours is a parse error", func(t *testing.T) {
		rec := record(map[string]string{
			"taskdate": "2026-01-15", "taskhours": "eight", "username": "jdoe",
		})

		_, err := MapTaskActivity(rec, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "taskhours")
	})
}

func TestMapExpense(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		rec := record(map[string]string{
			"username":    "jdoe",
			"expensedate": "01/16/2026",
			"amount":      "42.50",
		})

		expense, err := MapExpense(rec, "")
		require.NoError(t, err)

		assert.Equal(t, "USD", expense.Currency)
		assert.Equal(t, models.ExpenseStatusDraft, expense.Status)
		assert.Equal(t, "42.5", expense.Amount.String())
	})

	t.Run("amount aliases accepted", func(t *testing.T) {
		rec := record(map[string]string{
			"username": "jdoe", "date": "2026-01-15", "total": "10",
		})

		expense, err := MapExpense(rec, "")
		require.NoError(t, err)
		assert.Equal(t, "10", expense.Amount.String())
	})

	t.Run("missing amount names the field", func(t *testing.T) {
		rec := record(map[string]string{"username": "jdoe", "expensedate": "2026-01-15"})

		_, err := MapExpense(rec, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"amount"`)
	})
}

func TestMapDropdownValue(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		rec := record(map[string]string{
			"category": "expensetype", "itemvalue": "Travel",
		})

		value, err := MapDropdownValue(rec)
		require.NoError(t, err)

		assert.Equal(t, 0, value.DisplayOrder)
		assert.True(t, value.Active)
		assert.False(t, value.AllUsers)
	})

	t.Run("flags and order parsed", func(t *testing.T) {
		rec := record(map[string]string{
			"category": "expensetype", "itemvalue": "Travel",
			"displayorder": "3", "active": "no", "allusers": "yes",
		})

		value, err := MapDropdownValue(rec)
		require.NoError(t, err)

		assert.Equal(t, 3, value.DisplayOrder)
		assert.False(t, value.Active)
		assert.True(t, value.AllUsers)
	})

	t.Run("missing category names the field", func(t *testing.T) {
		rec := record(map[string]string{"itemvalue": "Travel"})

		_, err := MapDropdownValue(rec)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"category"`)
	})
}

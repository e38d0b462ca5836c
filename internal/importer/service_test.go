package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timeledger/internal/models"
	"timeledger/pkg/database"
)

type fakeTaskSaver struct {
	saved []*models.TaskActivity
}

func (f *fakeTaskSaver) Create(_ context.Context, activity *models.TaskActivity) error {
	f.saved = append(f.saved, activity)
	return nil
}

type fakeExpenseSaver struct {
	saved []*models.Expense
}

func (f *fakeExpenseSaver) Create(_ context.Context, expense *models.Expense) error {
	f.saved = append(f.saved, expense)
	return nil
}

// fakeDropdownSaver enforces the (category, subcategory, itemvalue) natural
// key the way the store does.
type fakeDropdownSaver struct {
	seen map[string]bool
}

func (f *fakeDropdownSaver) Create(_ context.Context, value *models.DropdownValue) error {
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	key := fmt.Sprintf("%s|%s|%s", value.Category, value.Subcategory, value.ItemValue)
	if f.seen[key] {
		return database.ErrDuplicate
	}
	f.seen[key] = true
	return nil
}

func newTestService(tasks TaskActivitySaver, expenses ExpenseSaver, dropdowns DropdownValueSaver) *Service {
	return NewService(tasks, expenses, dropdowns, zap.NewNop())
}

func TestService_ImportTaskActivities(t *testing.T) {
	t.Run("mixed date formats both parse", func(t *testing.T) {
		csvData := "taskdate,client,project,phase,taskhours,username\n" +
			"2026-01-15,Acme,Website,Dev,8.00,jdoe\n" +
			"01/16/2026,Acme,Website,Dev,7.5,jdoe\n"

		tasks := &fakeTaskSaver{}
		svc := newTestService(tasks, &fakeExpenseSaver{}, &fakeDropdownSaver{})

		summary, err := svc.ImportTaskActivities(context.Background(), strings.NewReader(csvData), "")
		require.NoError(t, err)

		assert.Equal(t, 2, summary.ProcessedCount)
		assert.Equal(t, 2, summary.SuccessCount)
		assert.Equal(t, 0, summary.ErrorCount)
		require.Len(t, tasks.saved, 2)
		assert.Equal(t, 15, tasks.saved[0].TaskDate.Day())
		assert.Equal(t, 16, tasks.saved[1].TaskDate.Day())
	})

	t.Run("hours over 24 rejected, file continues", func(t *testing.T) {
		csvData := "taskdate,taskhours,username\n" +
			"2026-01-15,25,jdoe\n" +
			"2026-01-16,8,jdoe\n"

		tasks := &fakeTaskSaver{}
		svc := newTestService(tasks, &fakeExpenseSaver{}, &fakeDropdownSaver{})

		summary, err := svc.ImportTaskActivities(context.Background(), strings.NewReader(csvData), "")
		require.NoError(t, err)

		assert.Equal(t, 2, summary.ProcessedCount)
		assert.Equal(t, 1, summary.SuccessCount)
		assert.Equal(t, 1, summary.ErrorCount)
		require.Len(t, summary.Errors, 1)
		assert.Contains(t, summary.Errors[0], "row 2")
		assert.Len(t, tasks.saved, 1)
	})

	t.Run("quoted multi-line details import as one row", func(t *testing.T) {
		csvData := "taskdate,taskhours,username,details\n" +
			"2026-01-15,8,jdoe,\"first line\nsecond line\"\n"

		tasks := &fakeTaskSaver{}
		svc := newTestService(tasks, &fakeExpenseSaver{}, &fakeDropdownSaver{})

		summary, err := svc.ImportTaskActivities(context.Background(), strings.NewReader(csvData), "")
		require.NoError(t, err)

		assert.Equal(t, 1, summary.ProcessedCount)
		assert.Equal(t, 1, summary.SuccessCount)
		require.Len(t, tasks.saved, 1)
		assert.Equal(t, "first line\nsecond line", tasks.saved[0].Details)
	})
}

func TestService_ImportExpenses(t *testing.T) {
	csvData := "username,expensedate,amount,vendor,currency\n" +
		"jdoe,2026-02-01,19.99,Lunch Spot,\n" +
		"jdoe,02/02/2026,not-a-number,Cafe,EUR\n"

	expenses := &fakeExpenseSaver{}
	svc := newTestService(&fakeTaskSaver{}, expenses, &fakeDropdownSaver{})

	summary, err := svc.ImportExpenses(context.Background(), strings.NewReader(csvData), "")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ProcessedCount)
	assert.Equal(t, 1, summary.SuccessCount)
	assert.Equal(t, 1, summary.ErrorCount)
	require.Len(t, expenses.saved, 1)
	assert.Equal(t, "USD", expenses.saved[0].Currency)
}

func TestService_ImportDropdownValues(t *testing.T) {
	t.Run("duplicate natural key skipped, not an error", func(t *testing.T) {
		csvData := "category,subcategory,itemvalue\n" +
			"expensetype,,Travel\n" +
			"expensetype,,Travel\n"

		svc := newTestService(&fakeTaskSaver{}, &fakeExpenseSaver{}, &fakeDropdownSaver{})

		summary, err := svc.ImportDropdownValues(context.Background(), strings.NewReader(csvData))
		require.NoError(t, err)

		assert.Equal(t, 2, summary.ProcessedCount)
		assert.Equal(t, 1, summary.SuccessCount)
		assert.Equal(t, 0, summary.ErrorCount)
		assert.Equal(t, 1, summary.DuplicateCount)
		assert.Empty(t, summary.Errors)
	})

	t.Run("missing category increments error count only", func(t *testing.T) {
		csvData := "category,itemvalue\n" +
			",Travel\n"

		svc := newTestService(&fakeTaskSaver{}, &fakeExpenseSaver{}, &fakeDropdownSaver{})

		summary, err := svc.ImportDropdownValues(context.Background(), strings.NewReader(csvData))
		require.NoError(t, err)

		assert.Equal(t, 1, summary.ProcessedCount)
		assert.Equal(t, 0, summary.SuccessCount)
		assert.Equal(t, 1, summary.ErrorCount)
		require.Len(t, summary.Errors, 1)
		assert.Contains(t, summary.Errors[0], `"category"`)
	})

	t.Run("empty file yields empty summary", func(t *testing.T) {
		svc := newTestService(&fakeTaskSaver{}, &fakeExpenseSaver{}, &fakeDropdownSaver{})

		summary, err := svc.ImportDropdownValues(context.Background(), strings.NewReader(""))
		require.NoError(t, err)

		assert.Equal(t, 0, summary.ProcessedCount)
	})

	t.Run("windows-1252 content decodes before parsing", func(t *testing.T) {
		// 0x95 is a Windows-1252 bullet inside the item value.
		csvData := "category,itemvalue\nexpensetype,Travel \x95 Air\n"

		dropdowns := &fakeDropdownSaver{}
		svc := newTestService(&fakeTaskSaver{}, &fakeExpenseSaver{}, dropdowns)

		summary, err := svc.ImportDropdownValues(context.Background(), strings.NewReader(csvData))
		require.NoError(t, err)

		assert.Equal(t, 1, summary.SuccessCount)
		assert.True(t, dropdowns.seen["expensetype||Travel • Air"])
	})
}

func TestService_ImportFailsOnOverlongLine(t *testing.T) {
	tasks := &fakeTaskSaver{}
	svc := newTestService(tasks, &fakeExpenseSaver{}, &fakeDropdownSaver{})

	// A physical line past the reader's buffer cap aborts the import; it
	// must never be reported as a clean partial success.
	csvData := "taskdate,taskhours,username\n" +
		"2026-01-15,8.00,jdoe\n" +
		"2026-01-16," + strings.Repeat("9", 2<<20) + ",jdoe\n" +
		"2026-01-17,6.00,jdoe\n"

	summary, err := svc.ImportTaskActivities(context.Background(), strings.NewReader(csvData), "jdoe")
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Contains(t, err.Error(), "failed to read import stream")
}

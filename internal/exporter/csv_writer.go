package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"timeledger/internal/models"
)

// Exports use encoding/csv, which escapes embedded quotes by doubling them
// per RFC 4180. Files written here re-import cleanly except for fields that
// themselves contain double quotes (the importer's splitter keeps doubled
// quotes literal).

var taskActivityHeaders = []string{
	"taskdate", "client", "project", "phase", "taskhours", "details", "username",
}

// WriteTaskActivitiesCSV streams task activities as CSV.
func WriteTaskActivitiesCSV(w io.Writer, activities []*models.TaskActivity) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(taskActivityHeaders); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, activity := range activities {
		row := []string{
			activity.TaskDate.Format("2006-01-02"),
			activity.Client,
			activity.Project,
			activity.Phase,
			activity.Hours.String(),
			activity.Details,
			activity.Username,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv output: %w", err)
	}
	return nil
}

var expenseHeaders = []string{
	"username", "client", "project", "expensedate", "expensetype",
	"description", "amount", "currency", "paymentmethod", "vendor",
	"referenceno", "status",
}

// WriteExpensesCSV streams expenses as CSV.
func WriteExpensesCSV(w io.Writer, expenses []*models.Expense) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(expenseHeaders); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, expense := range expenses {
		row := []string{
			expense.Username,
			expense.Client,
			expense.Project,
			expense.ExpenseDate.Format("2006-01-02"),
			expense.ExpenseType,
			expense.Description,
			expense.Amount.String(),
			expense.Currency,
			expense.PaymentMethod,
			expense.Vendor,
			expense.ReferenceNo,
			expense.Status,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv output: %w", err)
	}
	return nil
}

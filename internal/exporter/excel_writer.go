package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"timeledger/internal/models"
)

// WriteTaskActivitiesXLSX streams task activities as an xlsx workbook.
func WriteTaskActivitiesXLSX(w io.Writer, activities []*models.TaskActivity) error {
	rows := make([][]interface{}, 0, len(activities))
	for _, activity := range activities {
		rows = append(rows, []interface{}{
			activity.TaskDate.Format("2006-01-02"),
			activity.Client,
			activity.Project,
			activity.Phase,
			activity.Hours.String(),
			activity.Details,
			activity.Username,
		})
	}
	return writeWorkbook(w, "Task Activities", taskActivityHeaders, rows)
}

// WriteExpensesXLSX streams expenses as an xlsx workbook.
func WriteExpensesXLSX(w io.Writer, expenses []*models.Expense) error {
	rows := make([][]interface{}, 0, len(expenses))
	for _, expense := range expenses {
		rows = append(rows, []interface{}{
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
		})
	}
	return writeWorkbook(w, "Expenses", expenseHeaders, rows)
}

func writeWorkbook(w io.Writer, sheetName string, headers []string, rows [][]interface{}) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	if err := file.SetSheetName(sheet, sheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	sheet = sheetName

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header %s: %w", cell, err)
		}
	}

	for i, row := range rows {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"timeledger/internal/models"
)

// dateLayouts is tried in priority order; the first successful parse wins.
// ISO comes first because it is what our own exporter writes.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
}

// ParseDate tries every accepted layout in order.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q (accepted formats: yyyy-MM-dd, MM/dd/yyyy, M/d/yyyy, dd-MMM-yyyy)", trimmed)
}

// ParseDecimal parses a fixed-point decimal field.
func ParseDecimal(value string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unparseable number %q", trimmed)
	}
	return d, nil
}

// parseBool accepts the spellings spreadsheets actually produce.
func parseBool(value string, fallback bool) (bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	switch strings.ToLower(trimmed) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return false, fmt.Errorf("unparseable boolean %q", trimmed)
	}
	return parsed, nil
}

func missingField(name string) error {
	return fmt.Errorf("missing required field %q", name)
}

// MapTaskActivity populates a task activity from a record. The owning
// username falls back to defaultUsername (the authenticated uploader) when
// the file carries no username column.
func MapTaskActivity(rec Record, defaultUsername string) (*models.TaskActivity, error) {
	activity := &models.TaskActivity{
		Client:   rec.Get("client", "customer"),
		Project:  rec.Get("project"),
		Phase:    rec.Get("phase"),
		Details:  rec.Get("details", "description", "notes"),
		Username: rec.Get("username", "user", "owner"),
	}
	if activity.Username == "" {
		activity.Username = defaultUsername
	}
	if activity.Username == "" {
		return nil, missingField("username")
	}

	rawDate := rec.Get("taskdate", "date", "activitydate")
	if rawDate == "" {
		return nil, missingField("taskdate")
	}
	date, err := ParseDate(rawDate)
	if err != nil {
		return nil, fmt.Errorf("taskdate: %w", err)
	}
	activity.TaskDate = date

	rawHours := rec.Get("taskhours", "hours", "duration")
	if rawHours == "" {
		return nil, missingField("taskhours")
	}
	hours, err := ParseDecimal(rawHours)
	if err != nil {
		return nil, fmt.Errorf("taskhours: %w", err)
	}
	activity.Hours = hours

	return activity, nil
}

// MapExpense populates an expense from a record.
func MapExpense(rec Record, defaultUsername string) (*models.Expense, error) {
	expense := &models.Expense{
		Username:      rec.Get("username", "user", "owner"),
		Client:        rec.Get("client", "customer"),
		Project:       rec.Get("project"),
		ExpenseType:   rec.Get("expensetype", "type", "category"),
		Description:   rec.Get("description", "details", "notes"),
		Currency:      rec.Get("currency"),
		PaymentMethod: rec.Get("paymentmethod", "method"),
		Vendor:        rec.Get("vendor", "merchant"),
		ReferenceNo:   rec.Get("referenceno", "reference", "refno"),
		Status:        rec.Get("status"),
	}
	if expense.Username == "" {
		expense.Username = defaultUsername
	}
	if expense.Username == "" {
		return nil, missingField("username")
	}
	if expense.Currency == "" {
		expense.Currency = "USD"
	}
	if expense.Status == "" {
		expense.Status = models.ExpenseStatusDraft
	}

	rawDate := rec.Get("expensedate", "date")
	if rawDate == "" {
		return nil, missingField("expensedate")
	}
	date, err := ParseDate(rawDate)
	if err != nil {
		return nil, fmt.Errorf("expensedate: %w", err)
	}
	expense.ExpenseDate = date

	rawAmount := rec.Get("amount", "expenseamount", "total")
	if rawAmount == "" {
		return nil, missingField("amount")
	}
	amount, err := ParseDecimal(rawAmount)
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	expense.Amount = amount

	return expense, nil
}

// MapDropdownValue populates a dropdown value from a record.
func MapDropdownValue(rec Record) (*models.DropdownValue, error) {
	value := &models.DropdownValue{
		Category:    rec.Get("category"),
		Subcategory: rec.Get("subcategory", "subcat"),
		ItemValue:   rec.Get("itemvalue", "value", "item"),
		Active:      true,
	}
	if value.Category == "" {
		return nil, missingField("category")
	}
	if value.ItemValue == "" {
		return nil, missingField("itemvalue")
	}

	if raw := rec.Get("displayorder", "order", "sortorder"); raw != "" {
		order, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("displayorder: unparseable integer %q", raw)
		}
		value.DisplayOrder = order
	}

	active, err := parseBool(rec.Get("active"), true)
	if err != nil {
		return nil, fmt.Errorf("active: %w", err)
	}
	value.Active = active

	allUsers, err := parseBool(rec.Get("allusers", "alluservisible", "visibletoall"), false)
	if err != nil {
		return nil, fmt.Errorf("allusers: %w", err)
	}
	value.AllUsers = allUsers

	return value, nil
}

package importer

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"timeledger/internal/models"
)

var (
	hoursMax = decimal.NewFromInt(24)
)

// RecordValidator applies the declarative field constraints to mapped
// records and reports every violation at once. Numeric range checks live
// here explicitly because validator tags cannot see into decimal.Decimal.
type RecordValidator struct {
	validate *validator.Validate
}

// NewRecordValidator creates a validator for import records.
func NewRecordValidator() *RecordValidator {
	return &RecordValidator{validate: validator.New()}
}

// structViolations flattens validator.ValidationErrors into one message per
// failing field.
func (v *RecordValidator) structViolations(s interface{}) []string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	violations := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		violations = append(violations, fmt.Sprintf("%s: %s", fieldErr.Field(), fieldErr.Tag()))
	}
	return violations
}

// TaskActivity returns all constraint violations for a task activity.
func (v *RecordValidator) TaskActivity(t *models.TaskActivity) []string {
	violations := v.structViolations(t)
	if !t.Hours.IsPositive() {
		violations = append(violations, "Hours: must be greater than 0")
	} else if t.Hours.GreaterThan(hoursMax) {
		violations = append(violations, "Hours: must not exceed 24")
	}
	return violations
}

// Expense returns all constraint violations for an expense.
func (v *RecordValidator) Expense(e *models.Expense) []string {
	violations := v.structViolations(e)
	if e.Amount.IsNegative() {
		violations = append(violations, "Amount: must not be negative")
	}
	if !models.ValidExpenseStatus(e.Status) {
		violations = append(violations, fmt.Sprintf("Status: unknown status %q", e.Status))
	}
	return violations
}

// DropdownValue returns all constraint violations for a dropdown value.
func (v *RecordValidator) DropdownValue(d *models.DropdownValue) []string {
	return v.structViolations(d)
}

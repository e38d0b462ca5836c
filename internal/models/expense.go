package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Expense status lifecycle
const (
	ExpenseStatusDraft       = "Draft"
	ExpenseStatusSubmitted   = "Submitted"
	ExpenseStatusApproved    = "Approved"
	ExpenseStatusRejected    = "Rejected"
	ExpenseStatusResubmitted = "Resubmitted"
	ExpenseStatusReimbursed  = "Reimbursed"
)

// expenseTransitions holds the legal status edges.
var expenseTransitions = map[string][]string{
	ExpenseStatusDraft:       {ExpenseStatusSubmitted},
	ExpenseStatusSubmitted:   {ExpenseStatusApproved, ExpenseStatusRejected},
	ExpenseStatusRejected:    {ExpenseStatusResubmitted},
	ExpenseStatusResubmitted: {ExpenseStatusApproved, ExpenseStatusRejected},
	ExpenseStatusApproved:    {ExpenseStatusReimbursed},
}

// ValidExpenseStatus reports whether s is one of the known statuses.
func ValidExpenseStatus(s string) bool {
	if s == ExpenseStatusReimbursed {
		return true
	}
	_, ok := expenseTransitions[s]
	return ok
}

// CanTransitionExpense reports whether from -> to is a legal status edge.
func CanTransitionExpense(from, to string) bool {
	for _, next := range expenseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Expense represents a single reimbursable expense entry
type Expense struct {
	ID            int64           `json:"id"`
	Username      string          `json:"username" validate:"required,max=64"`
	Client        string          `json:"client" validate:"max=128"`
	Project       string          `json:"project" validate:"max=128"`
	ExpenseDate   time.Time       `json:"expense_date" validate:"required"`
	ExpenseType   string          `json:"expense_type" validate:"max=64"`
	Description   string          `json:"description" validate:"max=2000"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency" validate:"max=8"`
	PaymentMethod string          `json:"payment_method" validate:"max=64"`
	Vendor        string          `json:"vendor" validate:"max=128"`
	ReferenceNo   string          `json:"reference_no" validate:"max=64"`
	Status        string          `json:"status"`
	ReceiptKey    string          `json:"receipt_key,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Transition moves the expense to the requested status or fails when the
// edge is illegal.
func (e *Expense) Transition(to string) error {
	if !ValidExpenseStatus(to) {
		return fmt.Errorf("unknown expense status: %s", to)
	}
	if !CanTransitionExpense(e.Status, to) {
		return fmt.Errorf("illegal status transition: %s -> %s", e.Status, to)
	}
	e.Status = to
	return nil
}

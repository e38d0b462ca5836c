package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaskActivity represents one logged unit of work. Identity is the
// surrogate ID; no natural-key uniqueness is enforced by business rules.
type TaskActivity struct {
	ID        int64           `json:"id"`
	TaskDate  time.Time       `json:"task_date" validate:"required"`
	Client    string          `json:"client" validate:"max=128"`
	Project   string          `json:"project" validate:"max=128"`
	Phase     string          `json:"phase" validate:"max=64"`
	Hours     decimal.Decimal `json:"hours"`
	Details   string          `json:"details" validate:"max=2000"`
	Username  string          `json:"username" validate:"required,max=64"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

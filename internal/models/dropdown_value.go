package models

import "time"

// DropdownValue represents one selectable value for a form dropdown.
// (Category, Subcategory, ItemValue) is unique; inserting a duplicate is a
// recoverable condition, not an error.
type DropdownValue struct {
	ID           int64     `json:"id"`
	Category     string    `json:"category" validate:"required,max=64"`
	Subcategory  string    `json:"subcategory" validate:"max=64"`
	ItemValue    string    `json:"item_value" validate:"required,max=128"`
	DisplayOrder int       `json:"display_order"`
	Active       bool      `json:"active"`
	AllUsers     bool      `json:"all_users"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

package models

import "time"

// DateLayout is the wire and storage layout of calendar dates.
const DateLayout = "2006-01-02"

// Expense is a single spending record owned by exactly one user.
type Expense struct {
	Base
	UserID      string    `gorm:"type:uuid;not null;index:idx_expenses_user_date,priority:1" json:"user_id"`
	Amount      int64     `gorm:"type:bigint;not null" json:"amount"` // cents
	Category    string    `gorm:"size:50;not null" json:"category"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Date        time.Time `gorm:"type:date;not null;index:idx_expenses_user_date,priority:2" json:"date"`
}

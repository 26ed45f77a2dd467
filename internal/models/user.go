package models

// User represents an account holder. Email is stored normalized (trimmed,
// lower-cased) and is unique.
type User struct {
	Base
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Expenses     []Expense `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Budgets      []Budget  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

package models

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// Budget caps spending for one category over a recurring period.
type Budget struct {
	Base
	UserID   string       `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_category_period,priority:1" json:"user_id"`
	Category string       `gorm:"size:50;not null;uniqueIndex:idx_budgets_user_category_period,priority:2" json:"category"`
	Amount   int64        `gorm:"type:bigint;not null" json:"amount"` // cents
	Period   BudgetPeriod `gorm:"size:16;not null;uniqueIndex:idx_budgets_user_category_period,priority:3" json:"period"`
}

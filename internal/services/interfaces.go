package services

import (
	"context"
	"time"

	"spendwise/internal/models"
	"spendwise/internal/pagination"
)

// UserServicer is the credential store: it owns user identities and their password hashes.
type UserServicer interface {
	CreateUser(ctx context.Context, name, email, password string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// ExpenseFields are the values required to create an expense. Date is a
// YYYY-MM-DD calendar date; Amount is in cents.
type ExpenseFields struct {
	Amount      int64
	Category    string
	Description *string
	Date        string
}

// ExpenseUpdate carries a partial update; nil fields are left untouched.
// A non-nil empty Description clears the description.
type ExpenseUpdate struct {
	Amount      *int64
	Category    *string
	Description *string
	Date        *string
}

// ExpenseFilter holds optional filter parameters for listing expenses.
// From and To are inclusive calendar dates.
type ExpenseFilter struct {
	From     *time.Time
	To       *time.Time
	Category string
}

// CategoryTotal aggregates the expenses of one category.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
	Count    int64  `json:"count"`
}

// ExpenseSummary aggregates a user's expenses.
type ExpenseSummary struct {
	Total      int64           `json:"total"`
	Count      int64           `json:"count"`
	ByCategory []CategoryTotal `json:"by_category"`
}

// ExpenseServicer is the ownership-scoped expense store. Every operation is
// filtered by ownerID; records of other users behave as if they did not exist.
type ExpenseServicer interface {
	CreateExpense(ctx context.Context, ownerID string, fields ExpenseFields) (*models.Expense, error)
	ListExpenses(ctx context.Context, ownerID string, filter ExpenseFilter) ([]models.Expense, error)
	GetExpenseByID(ctx context.Context, ownerID, expenseID string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, ownerID, expenseID string, update ExpenseUpdate) (*models.Expense, error)
	DeleteExpense(ctx context.Context, ownerID, expenseID string) error
	SummarizeExpenses(ctx context.Context, ownerID string, filter ExpenseFilter) (*ExpenseSummary, error)
}

// BudgetProgress contains spending vs budget data for one budget period.
type BudgetProgress struct {
	BudgetID    string              `json:"budget_id"`
	Category    string              `json:"category"`
	Period      models.BudgetPeriod `json:"period"`
	PeriodStart time.Time           `json:"period_start"`
	PeriodEnd   time.Time           `json:"period_end"`
	Budgeted    int64               `json:"budgeted"`
	Spent       int64               `json:"spent"`
	Remaining   int64               `json:"remaining"`
	Percentage  float64             `json:"percentage"`
}

// Budget alert levels.
const (
	AlertLevelWarning  = "warning"
	AlertLevelExceeded = "exceeded"
)

// BudgetAlert is raised when spending in a budget period crosses a threshold.
type BudgetAlert struct {
	Level    string
	Progress BudgetProgress
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(ctx context.Context, userID, category string, amount int64, period models.BudgetPeriod) (*models.Budget, error)
	GetUserBudgets(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(ctx context.Context, userID, budgetID string) (*models.Budget, error)
	UpdateBudget(ctx context.Context, userID, budgetID string, amount *int64, period *models.BudgetPeriod) (*models.Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID string) error
	GetBudgetProgress(ctx context.Context, userID, budgetID string) (*BudgetProgress, error)
	EvaluateAlerts(ctx context.Context, userID, category string, date time.Time) ([]BudgetAlert, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}

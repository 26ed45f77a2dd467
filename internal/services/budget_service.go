package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/pagination"
	"spendwise/internal/uuid"
)

// Spending reaches the warning level at warningPercent of the budget.
const warningPercent = 80

// budgetService handles budget-related business logic.
type budgetService struct {
	store
	now func() time.Time
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, timeout time.Duration) BudgetServicer {
	return &budgetService{store: store{db: db, timeout: timeout}, now: time.Now}
}

// CreateBudget creates a budget for a category. Categories are matched
// case-insensitively, so they are stored lower-cased.
func (s *budgetService) CreateBudget(ctx context.Context, userID, category string, amount int64, period models.BudgetPeriod) (*models.Budget, error) {
	category, err := normalizeCategory(category)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must be greater than zero")
	}
	if !validPeriod(period) {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "period must be monthly or yearly")
	}

	budget := &models.Budget{
		UserID:   userID,
		Category: strings.ToLower(category),
		Amount:   amount,
		Period:   period,
	}

	db, cancel := s.conn(ctx)
	defer cancel()
	if err := db.Create(budget).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, apperrors.ErrBudgetExists
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return nil, apperrors.WithMessage(apperrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, storeError(err)
	}

	return budget, nil
}

// GetUserBudgets returns a paginated list of budgets for the user.
func (s *budgetService) GetUserBudgets(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	db, cancel := s.conn(ctx)
	defer cancel()

	base := db.Model(&models.Budget{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, storeError(err)
	}

	budgets := []models.Budget{}
	if err := base.Order("category ASC").Order("period ASC").Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, storeError(err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(ctx context.Context, userID, budgetID string) (*models.Budget, error) {
	if !uuid.IsValid(budgetID) {
		return nil, apperrors.ErrBudgetNotFound
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	var budget models.Budget
	if err := db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, storeError(err)
	}
	return &budget, nil
}

// UpdateBudget updates an existing budget's amount or period.
func (s *budgetService) UpdateBudget(ctx context.Context, userID, budgetID string, amount *int64, period *models.BudgetPeriod) (*models.Budget, error) {
	updates := make(map[string]interface{})
	if amount != nil {
		if *amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must be greater than zero")
		}
		updates["amount"] = *amount
	}
	if period != nil {
		if !validPeriod(*period) {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, "period must be monthly or yearly")
		}
		updates["period"] = *period
	}
	if !uuid.IsValid(budgetID) {
		return nil, apperrors.ErrBudgetNotFound
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	var budget models.Budget
	err := db.Transaction(func(tx *gorm.DB) error {
		owned := func() *gorm.DB { return tx.Where("id = ? AND user_id = ?", budgetID, userID) }

		if err := owned().First(&budget).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := owned().Model(&models.Budget{}).Updates(updates).Error; err != nil {
			return err
		}
		budget = models.Budget{}
		return owned().First(&budget).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperrors.ErrBudgetNotFound
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, apperrors.ErrBudgetExists
		}
		return nil, storeError(err)
	}
	return &budget, nil
}

// DeleteBudget deletes a budget owned by the user.
func (s *budgetService) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	if !uuid.IsValid(budgetID) {
		return apperrors.ErrBudgetNotFound
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	res := db.Where("id = ? AND user_id = ?", budgetID, userID).Delete(&models.Budget{})
	if res.Error != nil {
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrBudgetNotFound
	}
	return nil
}

// GetBudgetProgress calculates spending vs budget for the current period.
func (s *budgetService) GetBudgetProgress(ctx context.Context, userID, budgetID string) (*BudgetProgress, error) {
	budget, err := s.GetBudgetByID(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}
	return s.progress(ctx, budget, s.now())
}

// EvaluateAlerts returns an alert for every budget on category whose period
// containing date has reached the warning threshold.
func (s *budgetService) EvaluateAlerts(ctx context.Context, userID, category string, date time.Time) ([]BudgetAlert, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return nil, nil
	}

	db, cancel := s.conn(ctx)
	var budgets []models.Budget
	err := db.Where("user_id = ? AND category = ?", userID, category).Find(&budgets).Error
	cancel()
	if err != nil {
		return nil, storeError(err)
	}

	var alerts []BudgetAlert
	for i := range budgets {
		p, err := s.progress(ctx, &budgets[i], date)
		if err != nil {
			return nil, err
		}
		switch {
		case p.Spent > p.Budgeted:
			alerts = append(alerts, BudgetAlert{Level: AlertLevelExceeded, Progress: *p})
		case p.Spent*100 >= p.Budgeted*warningPercent:
			alerts = append(alerts, BudgetAlert{Level: AlertLevelWarning, Progress: *p})
		}
	}
	return alerts, nil
}

// progress sums the budget's category spending over the period containing at.
func (s *budgetService) progress(ctx context.Context, budget *models.Budget, at time.Time) (*BudgetProgress, error) {
	periodStart, periodEnd := PeriodWindow(budget.Period, at)

	db, cancel := s.conn(ctx)
	defer cancel()

	var spent int64
	err := db.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND LOWER(category) = ? AND date >= ? AND date <= ?",
			budget.UserID, budget.Category, periodStart, periodEnd).
		Scan(&spent).Error
	if err != nil {
		return nil, storeError(err)
	}

	var percentage float64
	if budget.Amount > 0 {
		percentage = float64(spent) / float64(budget.Amount) * 100
	}

	return &BudgetProgress{
		BudgetID:    budget.ID,
		Category:    budget.Category,
		Period:      budget.Period,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Budgeted:    budget.Amount,
		Spent:       spent,
		Remaining:   budget.Amount - spent,
		Percentage:  percentage,
	}, nil
}

// PeriodWindow returns the first and last calendar day (UTC midnight) of the
// period containing at.
func PeriodWindow(period models.BudgetPeriod, at time.Time) (time.Time, time.Time) {
	at = at.UTC()
	switch period {
	case models.BudgetPeriodYearly:
		start := time.Date(at.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, time.Date(at.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		start := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	}
}

func validPeriod(p models.BudgetPeriod) bool {
	return p == models.BudgetPeriodMonthly || p == models.BudgetPeriodYearly
}

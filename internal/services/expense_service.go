package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/uuid"
)

const (
	maxCategoryLen    = 50
	maxDescriptionLen = 500
)

// expenseService handles expense-related business logic.
type expenseService struct {
	store
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, timeout time.Duration) ExpenseServicer {
	return &expenseService{store: store{db: db, timeout: timeout}}
}

// CreateExpense records a new expense for ownerID.
func (s *expenseService) CreateExpense(ctx context.Context, ownerID string, fields ExpenseFields) (*models.Expense, error) {
	if ownerID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if fields.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must be greater than zero")
	}
	category, err := normalizeCategory(fields.Category)
	if err != nil {
		return nil, err
	}
	date, err := ParseDate(fields.Date)
	if err != nil {
		return nil, err
	}
	description, err := normalizeDescription(fields.Description)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		UserID:      ownerID,
		Amount:      fields.Amount,
		Category:    category,
		Description: description,
		Date:        date,
	}

	db, cancel := s.conn(ctx)
	defer cancel()
	if err := db.Create(expense).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, apperrors.WithMessage(apperrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, storeError(err)
	}
	return expense, nil
}

// ListExpenses returns the owner's expenses, most recent date first. Expenses
// sharing a date keep their insertion order (ids are time-ordered).
func (s *expenseService) ListExpenses(ctx context.Context, ownerID string, filter ExpenseFilter) ([]models.Expense, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	query := applyExpenseFilter(db.Where("user_id = ?", ownerID), filter)

	expenses := []models.Expense{}
	if err := query.Order("date DESC").Order("id ASC").Find(&expenses).Error; err != nil {
		return nil, storeError(err)
	}
	return expenses, nil
}

// GetExpenseByID retrieves an expense owned by ownerID.
func (s *expenseService) GetExpenseByID(ctx context.Context, ownerID, expenseID string) (*models.Expense, error) {
	if !uuid.IsValid(expenseID) {
		return nil, apperrors.ErrExpenseNotFound
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	var expense models.Expense
	if err := db.Where("id = ? AND user_id = ?", expenseID, ownerID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, storeError(err)
	}
	return &expense, nil
}

// UpdateExpense applies a partial update inside a transaction: the row is
// looked up through the owner filter, updated and re-read, or nothing changes.
func (s *expenseService) UpdateExpense(ctx context.Context, ownerID, expenseID string, update ExpenseUpdate) (*models.Expense, error) {
	updates, err := expenseUpdates(update)
	if err != nil {
		return nil, err
	}
	if !uuid.IsValid(expenseID) {
		return nil, apperrors.ErrExpenseNotFound
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	var expense models.Expense
	err = db.Transaction(func(tx *gorm.DB) error {
		owned := func() *gorm.DB { return tx.Where("id = ? AND user_id = ?", expenseID, ownerID) }

		if err := owned().First(&expense).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := owned().Model(&models.Expense{}).Updates(updates).Error; err != nil {
			return err
		}
		expense = models.Expense{}
		return owned().First(&expense).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, storeError(err)
	}
	return &expense, nil
}

// DeleteExpense deletes an expense owned by ownerID with a single statement.
func (s *expenseService) DeleteExpense(ctx context.Context, ownerID, expenseID string) error {
	if !uuid.IsValid(expenseID) {
		return apperrors.ErrExpenseNotFound
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	res := db.Where("id = ? AND user_id = ?", expenseID, ownerID).Delete(&models.Expense{})
	if res.Error != nil {
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrExpenseNotFound
	}
	return nil
}

// SummarizeExpenses totals the owner's expenses overall and per category.
// Categories are grouped case-insensitively and reported in lower case.
func (s *expenseService) SummarizeExpenses(ctx context.Context, ownerID string, filter ExpenseFilter) (*ExpenseSummary, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	byCategory := []CategoryTotal{}
	err := applyExpenseFilter(db.Model(&models.Expense{}).Where("user_id = ?", ownerID), filter).
		Select("LOWER(category) AS category, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("LOWER(category)").
		Order("total DESC").Order("category ASC").
		Scan(&byCategory).Error
	if err != nil {
		return nil, storeError(err)
	}

	summary := &ExpenseSummary{ByCategory: byCategory}
	for _, ct := range byCategory {
		summary.Total += ct.Total
		summary.Count += ct.Count
	}
	return summary, nil
}

func applyExpenseFilter(query *gorm.DB, filter ExpenseFilter) *gorm.DB {
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}
	if c := strings.TrimSpace(filter.Category); c != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(c))
	}
	return query
}

// ParseDate parses a YYYY-MM-DD calendar date to UTC midnight.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrValidation, "date is required")
	}
	date, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrValidation, "date must be a calendar date in YYYY-MM-DD format")
	}
	return date.UTC(), nil
}

func normalizeCategory(category string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return "", apperrors.WithMessage(apperrors.ErrValidation, "category is required")
	}
	if len([]rune(category)) > maxCategoryLen {
		return "", apperrors.WithMessage(apperrors.ErrValidation, "category must be at most 50 characters")
	}
	return category, nil
}

func normalizeDescription(description *string) (*string, error) {
	if description == nil {
		return nil, nil
	}
	d := strings.TrimSpace(*description)
	if d == "" {
		return nil, nil
	}
	if len([]rune(d)) > maxDescriptionLen {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "description must be at most 500 characters")
	}
	return &d, nil
}

// expenseUpdates validates a partial update and returns the column updates.
func expenseUpdates(update ExpenseUpdate) (map[string]interface{}, error) {
	updates := make(map[string]interface{})
	if update.Amount != nil {
		if *update.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must be greater than zero")
		}
		updates["amount"] = *update.Amount
	}
	if update.Category != nil {
		category, err := normalizeCategory(*update.Category)
		if err != nil {
			return nil, err
		}
		updates["category"] = category
	}
	if update.Description != nil {
		description, err := normalizeDescription(update.Description)
		if err != nil {
			return nil, err
		}
		if description == nil {
			updates["description"] = gorm.Expr("NULL")
		} else {
			updates["description"] = *description
		}
	}
	if update.Date != nil {
		date, err := ParseDate(*update.Date)
		if err != nil {
			return nil, err
		}
		updates["date"] = date
	}
	return updates, nil
}

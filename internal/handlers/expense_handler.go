package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/logger"
	"spendwise/internal/models"
	"spendwise/internal/money"
	"spendwise/internal/notify"
	"spendwise/internal/services"
)

// ExpenseHandler handles expense-related requests. Every operation is scoped
// to the authenticated user.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	budgetService  services.BudgetServicer
	auditService   services.AuditServicer
	publisher      notify.Publisher
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(
	expenseService services.ExpenseServicer,
	budgetService services.BudgetServicer,
	auditService services.AuditServicer,
	publisher notify.Publisher,
) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		budgetService:  budgetService,
		auditService:   auditService,
		publisher:      publisher,
	}
}

// CreateExpenseRequest represents the request payload for creating an expense.
// Amount accepts a JSON number or numeric string with at most two decimals.
type CreateExpenseRequest struct {
	Amount      json.Number `json:"amount" binding:"required" swaggertype:"number" example:"12.50"`
	Category    string      `json:"category" binding:"required,notblank,max=50"`
	Description *string     `json:"description" binding:"omitempty,max=500"`
	Date        string      `json:"date" binding:"required,iso_date" example:"2024-03-01"`
}

// UpdateExpenseRequest represents a partial update; omitted fields are kept.
type UpdateExpenseRequest struct {
	Amount      *json.Number `json:"amount" swaggertype:"number" example:"12.50"`
	Category    *string      `json:"category" binding:"omitempty,notblank,max=50"`
	Description *string      `json:"description" binding:"omitempty,max=500"`
	Date        *string      `json:"date" binding:"omitempty,iso_date" example:"2024-03-01"`
}

// ExpenseQuery holds the optional list filters.
type ExpenseQuery struct {
	From     string `form:"from" binding:"omitempty,iso_date"`
	To       string `form:"to" binding:"omitempty,iso_date"`
	Category string `form:"category" binding:"max=50"`
}

// ExportQuery holds the export format and list filters.
type ExportQuery struct {
	ExpenseQuery
	Format string `form:"format" binding:"omitempty,oneof=csv xlsx"`
}

// ExpenseResponse is the wire form of an expense.
type ExpenseResponse struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Amount      json.Number `json:"amount" swaggertype:"number" example:"12.50"`
	Category    string      `json:"category"`
	Description *string     `json:"description,omitempty"`
	Date        string      `json:"date" example:"2024-03-01"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// CategoryTotalResponse is one category line of a summary.
type CategoryTotalResponse struct {
	Category string      `json:"category"`
	Total    json.Number `json:"total" swaggertype:"number"`
	Count    int64       `json:"count"`
}

// SummaryResponse aggregates the caller's expenses.
type SummaryResponse struct {
	Total      json.Number             `json:"total" swaggertype:"number"`
	Count      int64                   `json:"count"`
	ByCategory []CategoryTotalResponse `json:"by_category"`
}

func newExpenseResponse(e *models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		Amount:      amountJSON(e.Amount),
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date.UTC().Format(models.DateLayout),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// CreateExpense handles the creation of a new expense.
// @Summary     Create an expense
// @Description Record a new expense for the authenticated user
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateExpenseRequest true "Expense details"
// @Success     201 {object} map[string]ExpenseResponse "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable, retry later"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), userID, services.ExpenseFields{
		Amount:      amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditActionCreateExpense, "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"amount": money.FormatCents(amount), "category": expense.Category, "date": req.Date})
	h.publishBudgetAlerts(c.Request.Context(), userID, expense)

	c.JSON(http.StatusCreated, gin.H{"expense": newExpenseResponse(expense)})
}

// GetExpenses lists the caller's expenses, most recent date first.
// @Summary     List expenses
// @Description List the authenticated user's expenses, most recent date first
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       from     query string false "First date (YYYY-MM-DD), inclusive"
// @Param       to       query string false "Last date (YYYY-MM-DD), inclusive"
// @Param       category query string false "Category, case-insensitive"
// @Success     200 {array}  ExpenseResponse "Expenses"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ExpenseQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindingError(err))
		return
	}
	filter, err := query.filter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.expenseService.ListExpenses(c.Request.Context(), userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := make([]ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		resp = append(resp, newExpenseResponse(&expenses[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetExpense returns a single expense.
// @Summary     Get an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} map[string]ExpenseResponse "Expense"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": newExpenseResponse(expense)})
}

// UpdateExpense applies a partial update to an expense.
// @Summary     Update an expense
// @Description Update any of amount, category, description and date. An empty description clears it.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Expense ID"
// @Param       request body UpdateExpenseRequest true "Fields to update"
// @Success     200 {object} map[string]ExpenseResponse "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	update := services.ExpenseUpdate{
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	}
	changes := map[string]interface{}{}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			respondWithError(c, err)
			return
		}
		update.Amount = &amount
		changes["amount"] = money.FormatCents(amount)
	}
	if req.Category != nil {
		changes["category"] = *req.Category
	}
	if req.Date != nil {
		changes["date"] = *req.Date
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), userID, c.Param("id"), update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditActionUpdateExpense, "expense", expense.ID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"expense": newExpenseResponse(expense)})
}

// DeleteExpense deletes an expense.
// @Summary     Delete an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} MessageResponse "Expense deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID := c.Param("id")
	if err := h.expenseService.DeleteExpense(c.Request.Context(), userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditActionDeleteExpense, "expense", expenseID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Expense deleted successfully"})
}

// GetSummary totals the caller's expenses overall and per category.
// @Summary     Summarize expenses
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       from     query string false "First date (YYYY-MM-DD), inclusive"
// @Param       to       query string false "Last date (YYYY-MM-DD), inclusive"
// @Param       category query string false "Category, case-insensitive"
// @Success     200 {object} map[string]SummaryResponse "Summary"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/summary [get]
func (h *ExpenseHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ExpenseQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindingError(err))
		return
	}
	filter, err := query.filter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.expenseService.SummarizeExpenses(c.Request.Context(), userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := SummaryResponse{
		Total:      amountJSON(summary.Total),
		Count:      summary.Count,
		ByCategory: make([]CategoryTotalResponse, 0, len(summary.ByCategory)),
	}
	for _, ct := range summary.ByCategory {
		resp.ByCategory = append(resp.ByCategory, CategoryTotalResponse{
			Category: ct.Category,
			Total:    amountJSON(ct.Total),
			Count:    ct.Count,
		})
	}
	c.JSON(http.StatusOK, gin.H{"summary": resp})
}

// filter validates the query and converts it into a service filter.
func (q ExpenseQuery) filter() (services.ExpenseFilter, error) {
	filter := services.ExpenseFilter{Category: q.Category}
	if q.From != "" {
		from, err := services.ParseDate(q.From)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := services.ParseDate(q.To)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return filter, apperrors.WithMessage(apperrors.ErrValidation, "from must not be after to")
	}
	return filter, nil
}

// publishBudgetAlerts notifies the owner when the new expense pushes a budget
// over a threshold. Failures are logged and never fail the request.
func (h *ExpenseHandler) publishBudgetAlerts(ctx context.Context, userID string, expense *models.Expense) {
	if h.budgetService == nil || h.publisher == nil {
		return
	}

	alerts, err := h.budgetService.EvaluateAlerts(ctx, userID, expense.Category, expense.Date)
	if err != nil {
		logger.Get().Warnw("failed to evaluate budget alerts", "error", err, "user_id", userID, "expense_id", expense.ID)
		return
	}

	for _, alert := range alerts {
		p := alert.Progress
		n := notify.Notification{
			UserID:     userID,
			BudgetID:   p.BudgetID,
			Category:   p.Category,
			Level:      alert.Level,
			Message:    fmt.Sprintf("%s budget for %s is at %.0f%%", p.Period, p.Category, p.Percentage),
			Budgeted:   money.FormatCents(p.Budgeted),
			Spent:      money.FormatCents(p.Spent),
			Percentage: p.Percentage,
			RaisedAt:   time.Now().UTC(),
		}
		if err := h.publisher.Publish(ctx, n); err != nil {
			logger.Get().Warnw("failed to publish budget alert", "error", err, "user_id", userID, "budget_id", p.BudgetID)
		}
	}
}

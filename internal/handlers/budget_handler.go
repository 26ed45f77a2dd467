package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spendwise/internal/models"
	"spendwise/internal/pagination"
	"spendwise/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	Category string              `json:"category" binding:"required,notblank,max=50"`
	Amount   json.Number         `json:"amount" binding:"required" swaggertype:"number" example:"300.00"`
	Period   models.BudgetPeriod `json:"period" binding:"required,budget_period" enums:"monthly,yearly"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
type UpdateBudgetRequest struct {
	Amount *json.Number         `json:"amount" swaggertype:"number" example:"300.00"`
	Period *models.BudgetPeriod `json:"period" binding:"omitempty,budget_period" enums:"monthly,yearly"`
}

// BudgetResponse is the wire form of a budget.
type BudgetResponse struct {
	ID        string              `json:"id"`
	Category  string              `json:"category"`
	Amount    json.Number         `json:"amount" swaggertype:"number"`
	Period    models.BudgetPeriod `json:"period"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// BudgetProgressResponse reports spending against a budget for its current period.
type BudgetProgressResponse struct {
	BudgetID    string              `json:"budget_id"`
	Category    string              `json:"category"`
	Period      models.BudgetPeriod `json:"period"`
	PeriodStart string              `json:"period_start" example:"2024-03-01"`
	PeriodEnd   string              `json:"period_end" example:"2024-03-31"`
	Budgeted    json.Number         `json:"budgeted" swaggertype:"number"`
	Spent       json.Number         `json:"spent" swaggertype:"number"`
	Remaining   json.Number         `json:"remaining" swaggertype:"number"`
	Percentage  float64             `json:"percentage"`
}

func newBudgetResponse(b models.Budget) BudgetResponse {
	return BudgetResponse{
		ID:        b.ID,
		Category:  b.Category,
		Amount:    amountJSON(b.Amount),
		Period:    b.Period,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a spending cap for a category over a monthly or yearly period
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} map[string]BudgetResponse "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Budget already exists"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), userID, req.Category, amount, req.Period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditActionCreateBudget, "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"category": budget.Category, "amount": req.Amount.String(), "period": req.Period})

	c.JSON(http.StatusCreated, gin.H{"budget": newBudgetResponse(*budget)})
}

// GetBudgets handles listing budgets for the authenticated user.
// @Summary     Get budgets
// @Description Get a paginated list of budgets for the authenticated user
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[BudgetResponse] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	result, err := h.budgetService.GetUserBudgets(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Map(*result, newBudgetResponse))
}

// GetBudget handles retrieving a specific budget.
// @Summary     Get budget by ID
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} map[string]BudgetResponse "Budget details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": newBudgetResponse(*budget)})
}

// UpdateBudget handles updating an existing budget.
// @Summary     Update budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Updated budget details"
// @Success     200 {object} map[string]BudgetResponse "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Budget already exists"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	changes := map[string]interface{}{}
	var amount *int64
	if req.Amount != nil {
		cents, err := parseAmount(*req.Amount)
		if err != nil {
			respondWithError(c, err)
			return
		}
		amount = &cents
		changes["amount"] = req.Amount.String()
	}
	if req.Period != nil {
		changes["period"] = *req.Period
	}

	budget, err := h.budgetService.UpdateBudget(c.Request.Context(), userID, c.Param("id"), amount, req.Period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditActionUpdateBudget, "budget", budget.ID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"budget": newBudgetResponse(*budget)})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID := c.Param("id")
	if err := h.budgetService.DeleteBudget(c.Request.Context(), userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditActionDeleteBudget, "budget", budgetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Budget deleted successfully"})
}

// GetBudgetProgress handles retrieving budget spending progress.
// @Summary     Get budget progress
// @Description Spending against the budget for the period containing today
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} map[string]BudgetProgressResponse "Budget progress"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id}/progress [get]
func (h *BudgetHandler) GetBudgetProgress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	p, err := h.budgetService.GetBudgetProgress(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": BudgetProgressResponse{
		BudgetID:    p.BudgetID,
		Category:    p.Category,
		Period:      p.Period,
		PeriodStart: p.PeriodStart.Format(models.DateLayout),
		PeriodEnd:   p.PeriodEnd.Format(models.DateLayout),
		Budgeted:    amountJSON(p.Budgeted),
		Spent:       amountJSON(p.Spent),
		Remaining:   amountJSON(p.Remaining),
		Percentage:  p.Percentage,
	}})
}

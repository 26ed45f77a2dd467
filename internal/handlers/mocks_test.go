package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"spendwise/internal/middleware"
	"spendwise/internal/models"
	"spendwise/internal/notify"
	"spendwise/internal/pagination"
	"spendwise/internal/services"
	"spendwise/internal/validator"
)

const (
	testUserID    = "01890a5d-ac96-774b-bcce-b302099a8057"
	testExpenseID = "01890a5d-ac96-7a4b-8cce-b302099a8058"
	testBudgetID  = "01890a5d-ac96-7b4b-9cce-b302099a8059"
)

// --- mock services ---

type mockUserService struct {
	createUserFn     func(name, email, password string) (*models.User, error)
	getUserByEmailFn func(email string) (*models.User, error)
	getUserByIDFn    func(id string) (*models.User, error)
	attemptLoginFn   func(email, password string) (*models.User, error)
	deleteUserFn     func(id string) error
}

func (m *mockUserService) CreateUser(_ context.Context, name, email, password string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(name, email, password)
	}
	return &models.User{Base: models.Base{ID: testUserID}, Name: name, Email: email}, nil
}

func (m *mockUserService) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

func (m *mockUserService) AttemptLogin(_ context.Context, email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{Base: models.Base{ID: testUserID}, Email: email}, nil
}

func (m *mockUserService) DeleteUser(_ context.Context, id string) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(id)
	}
	return nil
}

var _ services.UserServicer = (*mockUserService)(nil)

type mockExpenseService struct {
	createExpenseFn     func(ownerID string, fields services.ExpenseFields) (*models.Expense, error)
	listExpensesFn      func(ownerID string, filter services.ExpenseFilter) ([]models.Expense, error)
	getExpenseByIDFn    func(ownerID, expenseID string) (*models.Expense, error)
	updateExpenseFn     func(ownerID, expenseID string, update services.ExpenseUpdate) (*models.Expense, error)
	deleteExpenseFn     func(ownerID, expenseID string) error
	summarizeExpensesFn func(ownerID string, filter services.ExpenseFilter) (*services.ExpenseSummary, error)
}

func (m *mockExpenseService) CreateExpense(_ context.Context, ownerID string, fields services.ExpenseFields) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(ownerID, fields)
	}
	date, _ := time.Parse(models.DateLayout, fields.Date)
	return &models.Expense{
		Base:     models.Base{ID: testExpenseID},
		UserID:   ownerID,
		Amount:   fields.Amount,
		Category: fields.Category,
		Date:     date,
	}, nil
}

func (m *mockExpenseService) ListExpenses(_ context.Context, ownerID string, filter services.ExpenseFilter) ([]models.Expense, error) {
	if m.listExpensesFn != nil {
		return m.listExpensesFn(ownerID, filter)
	}
	return []models.Expense{}, nil
}

func (m *mockExpenseService) GetExpenseByID(_ context.Context, ownerID, expenseID string) (*models.Expense, error) {
	if m.getExpenseByIDFn != nil {
		return m.getExpenseByIDFn(ownerID, expenseID)
	}
	return &models.Expense{Base: models.Base{ID: expenseID}, UserID: ownerID}, nil
}

func (m *mockExpenseService) UpdateExpense(_ context.Context, ownerID, expenseID string, update services.ExpenseUpdate) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(ownerID, expenseID, update)
	}
	return &models.Expense{Base: models.Base{ID: expenseID}, UserID: ownerID}, nil
}

func (m *mockExpenseService) DeleteExpense(_ context.Context, ownerID, expenseID string) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(ownerID, expenseID)
	}
	return nil
}

func (m *mockExpenseService) SummarizeExpenses(_ context.Context, ownerID string, filter services.ExpenseFilter) (*services.ExpenseSummary, error) {
	if m.summarizeExpensesFn != nil {
		return m.summarizeExpensesFn(ownerID, filter)
	}
	return &services.ExpenseSummary{ByCategory: []services.CategoryTotal{}}, nil
}

var _ services.ExpenseServicer = (*mockExpenseService)(nil)

type mockBudgetService struct {
	createBudgetFn      func(userID, category string, amount int64, period models.BudgetPeriod) (*models.Budget, error)
	getUserBudgetsFn    func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	getBudgetByIDFn     func(userID, budgetID string) (*models.Budget, error)
	updateBudgetFn      func(userID, budgetID string, amount *int64, period *models.BudgetPeriod) (*models.Budget, error)
	deleteBudgetFn      func(userID, budgetID string) error
	getBudgetProgressFn func(userID, budgetID string) (*services.BudgetProgress, error)
	evaluateAlertsFn    func(userID, category string, date time.Time) ([]services.BudgetAlert, error)
}

func (m *mockBudgetService) CreateBudget(_ context.Context, userID, category string, amount int64, period models.BudgetPeriod) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(userID, category, amount, period)
	}
	return &models.Budget{Base: models.Base{ID: testBudgetID}, UserID: userID, Category: category, Amount: amount, Period: period}, nil
}

func (m *mockBudgetService) GetUserBudgets(_ context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	if m.getUserBudgetsFn != nil {
		return m.getUserBudgetsFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Budget{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockBudgetService) GetBudgetByID(_ context.Context, userID, budgetID string) (*models.Budget, error) {
	if m.getBudgetByIDFn != nil {
		return m.getBudgetByIDFn(userID, budgetID)
	}
	return &models.Budget{Base: models.Base{ID: budgetID}, UserID: userID}, nil
}

func (m *mockBudgetService) UpdateBudget(_ context.Context, userID, budgetID string, amount *int64, period *models.BudgetPeriod) (*models.Budget, error) {
	if m.updateBudgetFn != nil {
		return m.updateBudgetFn(userID, budgetID, amount, period)
	}
	return &models.Budget{Base: models.Base{ID: budgetID}, UserID: userID}, nil
}

func (m *mockBudgetService) DeleteBudget(_ context.Context, userID, budgetID string) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(userID, budgetID)
	}
	return nil
}

func (m *mockBudgetService) GetBudgetProgress(_ context.Context, userID, budgetID string) (*services.BudgetProgress, error) {
	if m.getBudgetProgressFn != nil {
		return m.getBudgetProgressFn(userID, budgetID)
	}
	return &services.BudgetProgress{BudgetID: budgetID}, nil
}

func (m *mockBudgetService) EvaluateAlerts(_ context.Context, userID, category string, date time.Time) ([]services.BudgetAlert, error) {
	if m.evaluateAlertsFn != nil {
		return m.evaluateAlertsFn(userID, category, date)
	}
	return nil, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

type mockAuditService struct {
	mu      sync.Mutex
	actions []string
}

func (m *mockAuditService) Log(_ context.Context, _, action, _, _, _ string, _ map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, action)
}

type mockTokenIssuer struct {
	issueFn func(userID string) (string, error)
}

func (m *mockTokenIssuer) Issue(userID string) (string, error) {
	if m.issueFn != nil {
		return m.issueFn(userID)
	}
	return "token-for-" + userID, nil
}

type mockPublisher struct {
	mu        sync.Mutex
	published []notify.Notification
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, n notify.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, n)
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	body := parseJSON(t, rec)
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got %v", body)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %s, got %v", code, errObj["code"])
	}
}


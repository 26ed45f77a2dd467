package services

import (
	"context"
	"testing"
	"time"

	"spendwise/internal/models"
	"spendwise/internal/pagination"
	"spendwise/internal/testutil"

	"gorm.io/gorm"
)

func newTestBudgetService(db *gorm.DB, now time.Time) *budgetService {
	svc := NewBudgetService(db, time.Second).(*budgetService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestCreateBudget(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, time.Second)
		user := testutil.CreateTestUser(t, db)

		budget, err := svc.CreateBudget(ctx, user.ID, "Groceries", 50000, models.BudgetPeriodMonthly)
		testutil.AssertNoError(t, err)

		if budget.ID == "" {
			t.Fatal("expected budget ID")
		}
		if budget.Category != "groceries" {
			t.Errorf("expected lower-cased category, got %s", budget.Category)
		}
		if budget.Amount != 50000 {
			t.Errorf("expected amount 50000, got %d", budget.Amount)
		}
	})

	t.Run("duplicate_category_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, time.Second)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(ctx, user.ID, "food", 100, models.BudgetPeriodMonthly)
		testutil.AssertNoError(t, err)
		_, err = svc.CreateBudget(ctx, user.ID, "FOOD", 200, models.BudgetPeriodMonthly)
		testutil.AssertAppError(t, err, "BUDGET_EXISTS")

		_, err = svc.CreateBudget(ctx, user.ID, "food", 200, models.BudgetPeriodYearly)
		testutil.AssertNoError(t, err)
	})

	t.Run("invalid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, time.Second)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(ctx, user.ID, "food", 0, models.BudgetPeriodMonthly)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
		_, err = svc.CreateBudget(ctx, user.ID, "", 100, models.BudgetPeriodMonthly)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
		_, err = svc.CreateBudget(ctx, user.ID, "food", 100, models.BudgetPeriod("weekly"))
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})
}

func TestGetUserBudgets(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db, time.Second)
	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)

	testutil.CreateTestBudget(t, db, alice.ID, "food", 100, models.BudgetPeriodMonthly)
	testutil.CreateTestBudget(t, db, alice.ID, "travel", 100, models.BudgetPeriodYearly)
	testutil.CreateTestBudget(t, db, alice.ID, "rent", 100, models.BudgetPeriodMonthly)
	testutil.CreateTestBudget(t, db, bob.ID, "food", 100, models.BudgetPeriodMonthly)

	result, err := svc.GetUserBudgets(ctx, alice.ID, pagination.PageRequest{Page: 1, PageSize: 2})
	testutil.AssertNoError(t, err)

	if result.TotalItems != 3 {
		t.Errorf("expected 3 total budgets, got %d", result.TotalItems)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 budgets on the first page, got %d", len(result.Data))
	}
	if result.Data[0].Category != "food" {
		t.Errorf("expected budgets ordered by category, got %s first", result.Data[0].Category)
	}
}

func TestUpdateBudget(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db, time.Second)
	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, alice.ID, "food", 100, models.BudgetPeriodMonthly)

	amount := int64(2500)
	updated, err := svc.UpdateBudget(ctx, alice.ID, budget.ID, &amount, nil)
	testutil.AssertNoError(t, err)
	if updated.Amount != 2500 || updated.Period != models.BudgetPeriodMonthly {
		t.Errorf("unexpected budget after update: %+v", updated)
	}

	_, err = svc.UpdateBudget(ctx, bob.ID, budget.ID, &amount, nil)
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")

	zero := int64(0)
	_, err = svc.UpdateBudget(ctx, alice.ID, budget.ID, &zero, nil)
	testutil.AssertAppError(t, err, "VALIDATION_ERROR")
}

func TestDeleteBudget(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db, time.Second)
	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, alice.ID, "food", 100, models.BudgetPeriodMonthly)

	testutil.AssertAppError(t, svc.DeleteBudget(ctx, bob.ID, budget.ID), "BUDGET_NOT_FOUND")
	testutil.AssertNoError(t, svc.DeleteBudget(ctx, alice.ID, budget.ID))
	testutil.AssertAppError(t, svc.DeleteBudget(ctx, alice.ID, budget.ID), "BUDGET_NOT_FOUND")
}

func TestGetBudgetProgress(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestBudgetService(db, time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC))
	user := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, user.ID, "food", 10000, models.BudgetPeriodMonthly)

	testutil.CreateTestExpense(t, db, user.ID, "Food", 2500, "2024-03-01")
	testutil.CreateTestExpense(t, db, user.ID, "food", 2500, "2024-03-31")
	testutil.CreateTestExpense(t, db, user.ID, "food", 9000, "2024-02-29")
	testutil.CreateTestExpense(t, db, user.ID, "travel", 9000, "2024-03-10")

	progress, err := svc.GetBudgetProgress(ctx, user.ID, budget.ID)
	testutil.AssertNoError(t, err)

	if progress.Spent != 5000 {
		t.Errorf("expected spent 5000, got %d", progress.Spent)
	}
	if progress.Remaining != 5000 {
		t.Errorf("expected remaining 5000, got %d", progress.Remaining)
	}
	if progress.Percentage != 50 {
		t.Errorf("expected 50%%, got %f", progress.Percentage)
	}
	if got := progress.PeriodEnd.Format(models.DateLayout); got != "2024-03-31" {
		t.Errorf("expected period end 2024-03-31, got %s", got)
	}
}

func TestEvaluateAlerts(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db, time.Second)
	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestBudget(t, db, user.ID, "food", 10000, models.BudgetPeriodMonthly)
	testutil.CreateTestBudget(t, db, user.ID, "food", 100000, models.BudgetPeriodYearly)

	date, _ := ParseDate("2024-05-20")

	testutil.CreateTestExpense(t, db, user.ID, "food", 7900, "2024-05-02")
	alerts, err := svc.EvaluateAlerts(ctx, user.ID, "Food", date)
	testutil.AssertNoError(t, err)
	if len(alerts) != 0 {
		t.Fatalf("expected no alerts below 80%%, got %d", len(alerts))
	}

	testutil.CreateTestExpense(t, db, user.ID, "food", 100, "2024-05-20")
	alerts, err = svc.EvaluateAlerts(ctx, user.ID, "food", date)
	testutil.AssertNoError(t, err)
	if len(alerts) != 1 || alerts[0].Level != AlertLevelWarning {
		t.Fatalf("expected one warning at 80%%, got %+v", alerts)
	}

	testutil.CreateTestExpense(t, db, user.ID, "food", 2001, "2024-05-21")
	alerts, err = svc.EvaluateAlerts(ctx, user.ID, "food", date)
	testutil.AssertNoError(t, err)
	if len(alerts) != 1 || alerts[0].Level != AlertLevelExceeded {
		t.Fatalf("expected one exceeded alert, got %+v", alerts)
	}
	if alerts[0].Progress.Period != models.BudgetPeriodMonthly {
		t.Errorf("expected the monthly budget to alert, got %s", alerts[0].Progress.Period)
	}
}

func TestPeriodWindow(t *testing.T) {
	at := time.Date(2024, time.February, 10, 23, 0, 0, 0, time.UTC)

	start, end := PeriodWindow(models.BudgetPeriodMonthly, at)
	if start.Format(models.DateLayout) != "2024-02-01" || end.Format(models.DateLayout) != "2024-02-29" {
		t.Errorf("unexpected monthly window %s..%s", start.Format(models.DateLayout), end.Format(models.DateLayout))
	}

	start, end = PeriodWindow(models.BudgetPeriodYearly, at)
	if start.Format(models.DateLayout) != "2024-01-01" || end.Format(models.DateLayout) != "2024-12-31" {
		t.Errorf("unexpected yearly window %s..%s", start.Format(models.DateLayout), end.Format(models.DateLayout))
	}
}

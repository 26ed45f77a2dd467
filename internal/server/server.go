// Package server assembles the HTTP router: middleware chain, public and
// protected routes, metrics and API docs.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"spendwise/internal/auth"
	_ "spendwise/internal/docs" // registers the swagger document
	"spendwise/internal/handlers"
	"spendwise/internal/logger"
	"spendwise/internal/middleware"
	"spendwise/internal/notify"
	"spendwise/internal/services"
	"spendwise/internal/validator"
)

// TokenService issues tokens at login and verifies them on protected routes.
type TokenService interface {
	auth.TokenIssuer
	auth.TokenVerifier
}

// Deps are the collaborators the router is built from.
type Deps struct {
	Users     services.UserServicer
	Expenses  services.ExpenseServicer
	Budgets   services.BudgetServicer
	Audit     services.AuditServicer
	Tokens    TokenService
	Publisher notify.Publisher

	// Registry receives the HTTP metrics and is served on /metrics.
	Registry      *prometheus.Registry
	MetricsAPIKey string

	// HealthCheck reports whether the store is reachable; nil means always healthy.
	HealthCheck func(ctx context.Context) error
}

// New builds the Gin engine serving the API.
func New(deps Deps) *gin.Engine {
	validator.Register()

	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	metrics := middleware.NewMetrics(deps.Registry)

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens, deps.Audit)
	expenseHandler := handlers.NewExpenseHandler(deps.Expenses, deps.Budgets, deps.Audit, deps.Publisher)
	budgetHandler := handlers.NewBudgetHandler(deps.Budgets, deps.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(metrics.Handler())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", middleware.APIKeyMiddleware(deps.MetricsAPIKey),
		gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	router.GET("/health", healthHandler(deps.HealthCheck))

	// Public routes
	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)

	// Protected routes
	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))

	protected.GET("/profile", authHandler.GetProfile)
	protected.DELETE("/profile", authHandler.DeleteAccount)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.GET("/summary", expenseHandler.GetSummary)
	expenses.GET("/export", expenseHandler.ExportExpenses)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)

	return router
}

// healthHandler godoc
// @Summary     Health check
// @Tags        health
// @Produce     json
// @Success     200 {object} map[string]string "Service healthy"
// @Failure     503 {object} map[string]string "Store unreachable"
// @Router      /health [get]
func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				logger.Get().Warnw("health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

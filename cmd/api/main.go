package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"spendwise/internal/auth"
	"spendwise/internal/config"
	"spendwise/internal/database"
	"spendwise/internal/logger"
	"spendwise/internal/notify"
	"spendwise/internal/server"
	"spendwise/internal/services"
)

// @title           Spendwise API
// @version         1.0
// @description     Spendwise is a personal expense tracker: register, log expenses, set category budgets and get alerted before overspending.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbManager, err := database.NewManager(appConfig.Database)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.Migrate(appConfig.MigrationsDir); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	hasher, err := auth.NewHasher(appConfig.PasswordHasher, appConfig.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to configure password hasher: %w", err)
	}
	tokens := auth.NewTokenService(appConfig.JWTSecret, appConfig.JWTIssuer, appConfig.JWTExpirationDur)

	publisher, err := newPublisher(appConfig)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warnf("publisher close error: %v", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	db := dbManager.DB()
	timeout := appConfig.StoreTimeout
	router := server.New(server.Deps{
		Users:         services.NewUserService(db, hasher, timeout),
		Expenses:      services.NewExpenseService(db, timeout),
		Budgets:       services.NewBudgetService(db, timeout),
		Audit:         services.NewAuditService(db, timeout),
		Tokens:        tokens,
		Publisher:     publisher,
		Registry:      registry,
		MetricsAPIKey: appConfig.MetricsAPIKey,
		HealthCheck:   dbManager.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: appConfig.ReadHeaderTimeout,
		ReadTimeout:       appConfig.ReadTimeout,
		WriteTimeout:      appConfig.WriteTimeout,
		IdleTimeout:       appConfig.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting Spendwise server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("Server stopped")
	return nil
}

// newPublisher connects to RabbitMQ when AMQP_URL is set and falls back to
// logging budget alerts otherwise.
func newPublisher(cfg *config.Config) (notify.Publisher, error) {
	if cfg.AMQPURL == "" {
		logger.Get().Info("AMQP_URL not set, budget alerts will be logged only")
		return notify.NewLogPublisher(), nil
	}
	p, err := notify.NewRabbitMQPublisher(cfg.AMQPURL, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return p, nil
}

// Package notify delivers budget alerts raised while recording expenses.
package notify

import (
	"context"
	"time"

	"spendwise/internal/logger"
)

// Notification is the message published for a budget alert.
type Notification struct {
	UserID     string    `json:"user_id"`
	BudgetID   string    `json:"budget_id"`
	Category   string    `json:"category"`
	Level      string    `json:"level"`
	Message    string    `json:"message"`
	Budgeted   string    `json:"budgeted"`
	Spent      string    `json:"spent"`
	Percentage float64   `json:"percentage"`
	RaisedAt   time.Time `json:"raised_at"`
}

// Publisher sends notifications to whoever consumes them.
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
	Close() error
}

// LogPublisher writes notifications to the application log. It is used when
// no message broker is configured.
type LogPublisher struct{}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher() *LogPublisher { return &LogPublisher{} }

// Publish logs the notification.
func (LogPublisher) Publish(_ context.Context, n Notification) error {
	logger.Get().Infow("budget alert",
		"user_id", n.UserID,
		"budget_id", n.BudgetID,
		"category", n.Category,
		"level", n.Level,
		"spent", n.Spent,
		"budgeted", n.Budgeted,
	)
	return nil
}

// Close is a no-op.
func (LogPublisher) Close() error { return nil }

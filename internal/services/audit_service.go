package services

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"spendwise/internal/logger"
	"spendwise/internal/models"
)

// Audit actions.
const (
	AuditActionRegister      = "REGISTER"
	AuditActionLogin         = "LOGIN"
	AuditActionDeleteAccount = "DELETE_ACCOUNT"
	AuditActionCreateExpense = "CREATE_EXPENSE"
	AuditActionUpdateExpense = "UPDATE_EXPENSE"
	AuditActionDeleteExpense = "DELETE_EXPENSE"
	AuditActionCreateBudget  = "CREATE_BUDGET"
	AuditActionUpdateBudget  = "UPDATE_BUDGET"
	AuditActionDeleteBudget  = "DELETE_BUDGET"
)

// auditService handles audit log recording.
type auditService struct {
	store
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB, timeout time.Duration) AuditServicer {
	return &auditService{store: store{db: db, timeout: timeout}}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(ctx context.Context, userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	db, cancel := s.conn(ctx)
	defer cancel()
	if err := db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

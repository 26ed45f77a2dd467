package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"spendwise/internal/database"
	apperrors "spendwise/internal/errors"
)

// store bounds every database call with a timeout derived from the caller's context.
type store struct {
	db      *gorm.DB
	timeout time.Duration
}

func (s store) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if s.timeout <= 0 {
		return s.db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

// storeError classifies an unexpected database error: transient failures are
// retryable by the client, everything else is internal.
func storeError(err error) error {
	if database.IsTransient(err) {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

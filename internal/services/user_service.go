package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"spendwise/internal/auth"
	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/uuid"
)

// userService handles user-related business logic.
type userService struct {
	store
	hasher auth.PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB, hasher auth.PasswordHasher, timeout time.Duration) UserServicer {
	return &userService{store: store{db: db, timeout: timeout}, hasher: hasher}
}

// NormalizeEmail trims and lower-cases an email so comparisons are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers a new user. Uniqueness is enforced by the email index,
// so concurrent registrations of the same address cannot both succeed.
func (s *userService) CreateUser(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "name, email and password are required")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, err.Error())
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}

	db, cancel := s.conn(ctx)
	defer cancel()
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, storeError(err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.ErrUserNotFound
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, storeError(err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrUserNotFound
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	var user models.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, storeError(err)
	}
	return &user, nil
}

// AttemptLogin checks credentials. Unknown emails and wrong passwords yield
// the same error, and unknown emails still pay for one hash verification.
func (s *userService) AttemptLogin(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.hasher.Verify(password, s.timingHash())
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// DeleteUser removes the user; their expenses and budgets go with them
// through the ON DELETE CASCADE foreign keys.
func (s *userService) DeleteUser(ctx context.Context, id string) error {
	if !uuid.IsValid(id) {
		return apperrors.ErrUserNotFound
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	res := db.Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (s *userService) timingHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("spendwise-login-timing")
	})
	return s.dummyHash
}

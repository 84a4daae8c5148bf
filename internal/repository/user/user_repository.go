// File: internal/repository/user/user_repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/go-planner/internal/domain"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create inserts a new user record.
func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		log.Printf("[UserRepository] Create error for username %s: %v", user.Username, err)
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// FindByID finds a user by their ID.
func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return r.handleFindError(err, &user, "FindByID", id)
}

// FindByUsername finds a user by their username.
func (r *gormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return r.handleFindError(err, &user, "FindByUsername", username)
}

// RecordFailedAttempt bumps the failed-login counter and optionally locks the account.
func (r *gormUserRepository) RecordFailedAttempt(ctx context.Context, id uint, lockUntil *time.Time) error {
	updates := map[string]interface{}{
		"failed_login_attempts": gorm.Expr("failed_login_attempts + 1"),
	}
	if lockUntil != nil {
		updates["locked_until"] = *lockUntil
	}
	result := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		log.Printf("[UserRepository] RecordFailedAttempt error for user ID %d: %v", id, result.Error)
		return fmt.Errorf("record failed attempt: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ResetFailedAttempts clears lockout fields after a successful login.
func (r *gormUserRepository) ResetFailedAttempts(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
	}).Error
	if err != nil {
		log.Printf("[UserRepository] ResetFailedAttempts error for user ID %d: %v", id, err)
		return fmt.Errorf("reset failed attempts: %w", err)
	}
	return nil
}

func (r *gormUserRepository) handleFindError(err error, user *domain.User, methodName string, identifier interface{}) (*domain.User, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("[UserRepository] %s error for %v: %v", methodName, identifier, err)
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

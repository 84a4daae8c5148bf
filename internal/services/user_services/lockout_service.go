package user_services

import (
	"context"
	"fmt"
	"time"

	"github.com/iyunix/go-planner/internal/domain"
	"github.com/iyunix/go-planner/internal/repository/user"
)

const (
	MaxFailedAttempts = 5
	LockoutDuration   = 15 * time.Minute
)

// LockoutService handles account security and brute force protection
type LockoutService struct {
	userRepo user.UserRepository
	logger   Logger
	now      func() time.Time
}

func NewLockoutService(userRepo user.UserRepository, logger Logger) *LockoutService {
	return &LockoutService{
		userRepo: userRepo,
		logger:   logger,
		now:      time.Now,
	}
}

// IsLocked reports whether the account is inside a lockout window.
func (s *LockoutService) IsLocked(u *domain.User) bool {
	return u.IsLocked(s.now())
}

// RecordFailedAttempt counts a failed login and locks the account once the
// limit is reached.
func (s *LockoutService) RecordFailedAttempt(ctx context.Context, u *domain.User, sourceIP string) error {
	attempts := u.FailedLoginAttempts + 1

	var lockUntil *time.Time
	if attempts >= MaxFailedAttempts {
		until := s.now().Add(LockoutDuration)
		lockUntil = &until
		s.logger.Warn("account locked due to excessive failed attempts",
			"user_id", u.ID,
			"username", mask(u.Username),
			"attempts", attempts,
			"locked_until", until.Format(time.RFC3339),
			"source_ip", sourceIP)
	} else {
		s.logger.Warn("failed login attempt recorded",
			"user_id", u.ID,
			"username", mask(u.Username),
			"attempts", attempts,
			"max_attempts", MaxFailedAttempts,
			"source_ip", sourceIP)
	}

	if err := s.userRepo.RecordFailedAttempt(ctx, u.ID, lockUntil); err != nil {
		s.logger.Error("failed to record failed attempt", "error", err, "user_id", u.ID)
		return fmt.Errorf("failed to update user: %w", err)
	}
	u.FailedLoginAttempts = attempts
	u.LockedUntil = lockUntil
	return nil
}

// ClearFailedAttempts resets the counter after a successful login.
func (s *LockoutService) ClearFailedAttempts(ctx context.Context, u *domain.User) error {
	if u.FailedLoginAttempts == 0 && u.LockedUntil == nil {
		return nil
	}
	if err := s.userRepo.ResetFailedAttempts(ctx, u.ID); err != nil {
		s.logger.Error("failed to clear failed attempts", "error", err, "user_id", u.ID)
		return fmt.Errorf("failed to update user: %w", err)
	}
	s.logger.Info("failed login attempts cleared", "user_id", u.ID, "previous_attempts", u.FailedLoginAttempts)
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	return nil
}

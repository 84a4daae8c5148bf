package user_services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/iyunix/go-planner/internal/auth"
	"github.com/iyunix/go-planner/internal/domain"
	"github.com/iyunix/go-planner/internal/repository/user"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

type AuthService struct {
	userRepo     user.UserRepository
	lockout      *LockoutService
	jwtSecretKey []byte
	logger       Logger
}

func NewAuthService(userRepo user.UserRepository, lockout *LockoutService, jwtSecretKey string, logger Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		lockout:      lockout,
		jwtSecretKey: []byte(jwtSecretKey),
		logger:       logger,
	}
}

// Register creates an account and returns it with a session token.
func (s *AuthService) Register(ctx context.Context, username, password, confirm string) (*domain.User, string, error) {
	if verr := validateRegistration(username, password, confirm); verr != nil {
		s.logger.Warn("registration validation failed", "username", mask(username), "error", verr.Error())
		return nil, "", verr
	}

	u := &domain.User{Username: username}
	if err := u.HashPassword(password); err != nil {
		s.logger.Error("password hashing failed", "error", err, "username", mask(username))
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.userRepo.Create(ctx, u)
	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			s.logger.Warn("registration failed - username already exists", "username", mask(username))
			return nil, "", &RegistrationError{Fields: map[string]string{"username": "A user with that username already exists."}}
		}
		s.logger.Error("user creation failed", "error", err, "username", mask(username))
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := auth.GenerateJWT(created.ID, created.Username, s.jwtSecretKey)
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", created.ID)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user registered successfully", "username", mask(username), "user_id", created.ID)
	return created, token, nil
}

// Login checks the credentials, applying the lockout policy, and returns a
// session token.
func (s *AuthService) Login(ctx context.Context, username, password, sourceIP string) (*domain.User, string, error) {
	if username == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	u, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.logger.Warn("login failed - user not found", "username", mask(username), "source_ip", sourceIP)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if s.lockout.IsLocked(u) {
		s.logger.Warn("login attempt on locked account", "user_id", u.ID, "source_ip", sourceIP)
		return nil, "", ErrAccountLocked
	}
	if u.LockedUntil != nil {
		// The previous lock has expired; start counting afresh.
		if err := s.lockout.ClearFailedAttempts(ctx, u); err != nil {
			return nil, "", err
		}
	}

	if err := u.ValidatePassword(password); err != nil {
		if recErr := s.lockout.RecordFailedAttempt(ctx, u, sourceIP); recErr != nil {
			return nil, "", recErr
		}
		if s.lockout.IsLocked(u) {
			return nil, "", ErrAccountLocked
		}
		return nil, "", ErrInvalidCredentials
	}

	if err := s.lockout.ClearFailedAttempts(ctx, u); err != nil {
		s.logger.Warn("could not reset failed attempts", "user_id", u.ID, "error", err)
	}

	token, err := auth.GenerateJWT(u.ID, u.Username, s.jwtSecretKey)
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", u.ID)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("login successful", "username", mask(username), "user_id", u.ID)
	return u, token, nil
}

// ValidateJWTToken validates a session token and returns the user ID
func (s *AuthService) ValidateJWTToken(tokenString string) (uint, error) {
	if tokenString == "" {
		return 0, errors.New("empty token")
	}
	userID, err := auth.ValidateToken(tokenString, s.jwtSecretKey)
	if err != nil {
		s.logger.Debug("JWT token validation failed", "error", err)
		return 0, err
	}
	return userID, nil
}

// GetUser loads the account behind a validated token.
func (s *AuthService) GetUser(ctx context.Context, userID uint) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func validateRegistration(username, password, confirm string) *RegistrationError {
	fields := map[string]string{}
	if !usernamePattern.MatchString(username) {
		fields["username"] = "Username must be 3-20 characters: letters, digits or underscores."
	}
	if len(password) < 8 {
		fields["password"] = "Password must be at least 8 characters."
	}
	if password != confirm {
		fields["password_confirm"] = "The two password fields didn't match."
	}
	if len(fields) > 0 {
		return &RegistrationError{Fields: fields}
	}
	return nil
}

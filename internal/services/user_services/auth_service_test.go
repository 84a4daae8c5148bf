package user_services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-planner/internal/repository"
	"github.com/iyunix/go-planner/internal/repository/user"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

func newAuthService(t *testing.T) (*AuthService, *LockoutService, user.UserRepository) {
	t.Helper()
	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	repo := user.NewGormUserRepository(db)
	lockout := NewLockoutService(repo, nopLogger{})
	return NewAuthService(repo, lockout, "test-secret", nopLogger{}), lockout, repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	created, token, err := svc.Register(ctx, "alice_1", "correct horse", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotEqual(t, "correct horse", created.Password)

	userID, err := svc.ValidateJWTToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, userID)

	u, token, err := svc.Login(ctx, "alice_1", "correct horse", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)
	assert.NotEmpty(t, token)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "a!", "short", "other")
	var regErr *RegistrationError
	require.True(t, errors.As(err, &regErr))
	assert.Contains(t, regErr.Fields, "username")
	assert.Contains(t, regErr.Fields, "password")
	assert.Contains(t, regErr.Fields, "password_confirm")

	_, _, err = svc.Register(ctx, "alice", "password123", "password123")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, "alice", "password456", "password456")
	require.True(t, errors.As(err, &regErr))
	assert.Contains(t, regErr.Fields, "username")
}

func TestLogin_WrongPasswordAndUnknownUser(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()
	_, _, err := svc.Register(ctx, "alice", "password123", "password123")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice", "nope-nope", "")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, _, err = svc.Login(ctx, "nobody", "password123", "")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	svc, lockout, repo := newAuthService(t)
	ctx := context.Background()
	_, _, err := svc.Register(ctx, "alice", "password123", "password123")
	require.NoError(t, err)

	for i := 1; i < MaxFailedAttempts; i++ {
		_, _, err = svc.Login(ctx, "alice", "wrong-pass", "")
		assert.True(t, errors.Is(err, ErrInvalidCredentials), "attempt %d", i)
	}
	_, _, err = svc.Login(ctx, "alice", "wrong-pass", "")
	assert.True(t, errors.Is(err, ErrAccountLocked))

	_, _, err = svc.Login(ctx, "alice", "password123", "")
	assert.True(t, errors.Is(err, ErrAccountLocked), "correct password is refused while locked")

	lockout.now = func() time.Time { return time.Now().Add(LockoutDuration + time.Minute) }
	_, _, err = svc.Login(ctx, "alice", "password123", "")
	require.NoError(t, err)

	u, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, u.FailedLoginAttempts)
	assert.Nil(t, u.LockedUntil)
}

func TestValidateJWTToken_Empty(t *testing.T) {
	svc, _, _ := newAuthService(t)
	_, err := svc.ValidateJWTToken("")
	assert.Error(t, err)
}

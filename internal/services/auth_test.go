package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/smartcram/smartcram-backend/internal/repos"
)

func newAuthServiceForTest(t *testing.T, db *gorm.DB, secret string) AuthService {
	t.Helper()
	log := newTestLogger()
	return NewAuthService(log, repos.NewUserRepo(db, log), secret, 720*time.Minute)
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthServiceForTest(t, db, "test-secret")

	user, err := svc.Register(context.Background(), "Alice@Example.COM ", "supersecret", " Alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", user.FullName)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "supersecret", user.PasswordHash)

	token, expiresIn, err := svc.Login(context.Background(), "alice@example.com", "supersecret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 720, expiresIn)

	authed, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthServiceForTest(t, db, "test-secret")

	_, err := svc.Register(context.Background(), "dup@test.com", "supersecret", "")
	require.NoError(t, err)
	// Normalization makes the duplicate check case-insensitive.
	_, err = svc.Register(context.Background(), "DUP@test.com", "supersecret", "")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthServiceForTest(t, db, "test-secret")

	_, err := svc.Register(context.Background(), "bob@test.com", "supersecret", "")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "bob@test.com", "wrongpassword")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(context.Background(), "nobody@test.com", "supersecret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger()
	userRepo := repos.NewUserRepo(db, log)
	authSvc := NewAuthService(log, userRepo, "test-secret", 720*time.Minute)
	userSvc := NewUserService(log, userRepo)

	user, err := authSvc.Register(context.Background(), "gone@test.com", "supersecret", "")
	require.NoError(t, err)
	require.NoError(t, userSvc.Deactivate(context.Background(), user.ID))

	_, _, err = authSvc.Login(context.Background(), "gone@test.com", "supersecret")
	require.ErrorIs(t, err, ErrInactiveUser)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthServiceForTest(t, db, "test-secret")

	_, err := svc.Authenticate(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	// A token signed under a different secret must not verify.
	other := newAuthServiceForTest(t, db, "other-secret")
	_, err = other.Register(context.Background(), "carol@test.com", "supersecret", "")
	require.NoError(t, err)
	token, _, err := other.Login(context.Background(), "carol@test.com", "supersecret")
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateRejectsDeactivatedUser(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger()
	userRepo := repos.NewUserRepo(db, log)
	authSvc := NewAuthService(log, userRepo, "test-secret", 720*time.Minute)
	userSvc := NewUserService(log, userRepo)

	user, err := authSvc.Register(context.Background(), "dave@test.com", "supersecret", "")
	require.NoError(t, err)
	token, _, err := authSvc.Login(context.Background(), "dave@test.com", "supersecret")
	require.NoError(t, err)

	require.NoError(t, userSvc.Deactivate(context.Background(), user.ID))
	_, err = authSvc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger()
	userRepo := repos.NewUserRepo(db, log)
	authSvc := NewAuthService(log, userRepo, "test-secret", 720*time.Minute)
	userSvc := NewUserService(log, userRepo)

	user, err := authSvc.Register(context.Background(), "eve@test.com", "oldpassword", "")
	require.NoError(t, err)

	err = userSvc.ChangePassword(context.Background(), user.ID, "wrongcurrent", "newpassword")
	require.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, userSvc.ChangePassword(context.Background(), user.ID, "oldpassword", "newpassword"))
	_, _, err = authSvc.Login(context.Background(), "eve@test.com", "oldpassword")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = authSvc.Login(context.Background(), "eve@test.com", "newpassword")
	require.NoError(t, err)
}

func TestUpdateName(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger()
	userRepo := repos.NewUserRepo(db, log)
	authSvc := NewAuthService(log, userRepo, "test-secret", 720*time.Minute)
	userSvc := NewUserService(log, userRepo)

	user, err := authSvc.Register(context.Background(), "frank@test.com", "supersecret", "Frank")
	require.NoError(t, err)

	updated, err := userSvc.UpdateName(context.Background(), user.ID, "  Franklin  ")
	require.NoError(t, err)
	assert.Equal(t, "Franklin", updated.FullName)

	reloaded, err := userSvc.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Franklin", reloaded.FullName)
}

func TestDeactivateKeepsRow(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger()
	userRepo := repos.NewUserRepo(db, log)
	authSvc := NewAuthService(log, userRepo, "test-secret", 720*time.Minute)
	userSvc := NewUserService(log, userRepo)

	user, err := authSvc.Register(context.Background(), "grace@test.com", "supersecret", "")
	require.NoError(t, err)
	require.NoError(t, userSvc.Deactivate(context.Background(), user.ID))

	reloaded, err := userSvc.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/lendbook/lendbook-api/internal/config"
	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockUserRepository struct {
	mockFindByID    func(ctx context.Context, id uint) (*models.User, error)
	mockFindByEmail func(ctx context.Context, email string) (*models.User, error)
	mockCreate      func(ctx context.Context, user *models.User) error
	mockUpdate      func(ctx context.Context, user *models.User) error
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.mockFindByEmail != nil {
		return m.mockFindByEmail(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) SetRecoveryCode(ctx context.Context, userID uint, code string, sentAt time.Time) error {
	return nil
}

func (m *mockUserRepository) ClearRecoveryCode(ctx context.Context, userID uint) error {
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id uint) error {
	return nil
}

type mockRefreshTokenRepository struct {
	mockFindByToken func(ctx context.Context, token string) (*models.RefreshToken, error)
	mockCreate      func(ctx context.Context, rt *models.RefreshToken) error
	mockDelete      func(ctx context.Context, token string) error
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if m.mockFindByToken != nil {
		return m.mockFindByToken(ctx, token)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, rt *models.RefreshToken) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, rt)
	}
	return nil
}

func (m *mockRefreshTokenRepository) Delete(ctx context.Context, token string) error {
	if m.mockDelete != nil {
		return m.mockDelete(ctx, token)
	}
	return nil
}

func (m *mockRefreshTokenRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return nil
}

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
	}
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &models.User{
		ID:                1,
		Email:             "owner@example.com",
		EncryptedPassword: hash,
		FullName:          "Nomsa Dlamini",
		Role:              models.RoleUser,
		Status:            models.StatusActive,
	}
}

func TestLoginSuccess(t *testing.T) {
	user := activeUser(t, "secret123")

	var storedToken string
	userRepo := &mockUserRepository{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	rtRepo := &mockRefreshTokenRepository{
		mockCreate: func(ctx context.Context, rt *models.RefreshToken) error {
			storedToken = rt.Token
			return nil
		},
	}

	svc := NewAuthService(userRepo, rtRepo, testAuthConfig())

	result, err := svc.Login(context.Background(), "owner@example.com", "secret123")
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, storedToken, result.RefreshToken)
	assert.Equal(t, "owner@example.com", result.User.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	user := activeUser(t, "secret123")

	userRepo := &mockUserRepository{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	svc := NewAuthService(userRepo, &mockRefreshTokenRepository{}, testAuthConfig())

	_, err := svc.Login(context.Background(), "owner@example.com", "wrong")
	assert.EqualError(t, err, "invalid credentials")
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(&mockUserRepository{}, &mockRefreshTokenRepository{}, testAuthConfig())

	_, err := svc.Login(context.Background(), "nobody@example.com", "secret123")
	assert.EqualError(t, err, "invalid credentials")
}

func TestLoginSuspendedAccount(t *testing.T) {
	user := activeUser(t, "secret123")
	user.Status = models.StatusSuspended

	userRepo := &mockUserRepository{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	svc := NewAuthService(userRepo, &mockRefreshTokenRepository{}, testAuthConfig())

	_, err := svc.Login(context.Background(), "owner@example.com", "secret123")
	assert.EqualError(t, err, "account inactive or suspended")
}

func TestRefreshTokenRotates(t *testing.T) {
	user := activeUser(t, "secret123")
	expiresAt := time.Now().Add(time.Hour)

	deleted := []string{}
	var created string
	userRepo := &mockUserRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return user, nil
		},
	}
	rtRepo := &mockRefreshTokenRepository{
		mockFindByToken: func(ctx context.Context, token string) (*models.RefreshToken, error) {
			if token == "old-token" {
				return &models.RefreshToken{UserID: 1, Token: token, ExpiresAt: &expiresAt}, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		mockCreate: func(ctx context.Context, rt *models.RefreshToken) error {
			created = rt.Token
			return nil
		},
		mockDelete: func(ctx context.Context, token string) error {
			deleted = append(deleted, token)
			return nil
		},
	}

	svc := NewAuthService(userRepo, rtRepo, testAuthConfig())

	result, err := svc.RefreshToken(context.Background(), "old-token")
	require.NoError(t, err)

	// The old token is consumed and a fresh one takes its place.
	assert.Equal(t, []string{"old-token"}, deleted)
	assert.Equal(t, created, result.RefreshToken)
	assert.NotEqual(t, "old-token", result.RefreshToken)
}

func TestRefreshTokenExpired(t *testing.T) {
	expiresAt := time.Now().Add(-time.Hour)

	deleted := []string{}
	rtRepo := &mockRefreshTokenRepository{
		mockFindByToken: func(ctx context.Context, token string) (*models.RefreshToken, error) {
			return &models.RefreshToken{UserID: 1, Token: token, ExpiresAt: &expiresAt}, nil
		},
		mockDelete: func(ctx context.Context, token string) error {
			deleted = append(deleted, token)
			return nil
		},
	}

	svc := NewAuthService(&mockUserRepository{}, rtRepo, testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), "stale-token")
	assert.EqualError(t, err, "token expired")
	assert.Equal(t, []string{"stale-token"}, deleted)
}

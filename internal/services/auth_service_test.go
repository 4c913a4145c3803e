// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shelfshare/booklend-backend/internal/apperrors"
	"github.com/shelfshare/booklend-backend/internal/config"
	"github.com/shelfshare/booklend-backend/internal/identity"
	"github.com/shelfshare/booklend-backend/internal/models"
	"github.com/shelfshare/booklend-backend/internal/utils"
)

const testPassword = "Sup3r$ecret"

func newAuthService(db *gorm.DB) (*AuthService, *identity.Broadcaster) {
	utils.SetJWTSecret("test-secret")
	sessions := identity.NewBroadcaster()
	cfg := &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  24,
			RefreshTokenTTL: 168,
		},
	}
	return NewAuthService(db, cfg, sessions), sessions
}

func TestRegisterIssuesTokensAndPublishesSession(t *testing.T) {
	db := setupTestDB(t)
	svc, sessions := newAuthService(db)

	resp, err := svc.Register(&RegisterRequest{
		Username: "ada",
		Email:    "ada@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 24*3600, resp.ExpiresIn)
	assert.Equal(t, "ada", resp.User.Username)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.UserID)

	current := sessions.Current()
	assert.True(t, current.Authenticated())
	assert.Equal(t, resp.User.ID, current.UserID)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newAuthService(db)

	_, err := svc.Register(&RegisterRequest{
		Username: "ada", Email: "ada@example.com", Password: testPassword,
	})
	require.NoError(t, err)

	_, err = svc.Register(&RegisterRequest{
		Username: "ada2", Email: "ada@example.com", Password: testPassword,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidInput, apperrors.KindOf(err))

	_, err = svc.Register(&RegisterRequest{
		Username: "ada", Email: "other@example.com", Password: testPassword,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidInput, apperrors.KindOf(err))
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newAuthService(db)

	_, err := svc.Register(&RegisterRequest{
		Username: "ada", Email: "ada@example.com", Password: "password",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidInput, apperrors.KindOf(err))
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	svc, sessions := newAuthService(db)

	registered, err := svc.Register(&RegisterRequest{
		Username: "ada", Email: "ada@example.com", Password: testPassword,
	})
	require.NoError(t, err)
	svc.Logout()
	assert.Equal(t, identity.StateAnonymous, sessions.Current().State)

	resp, err := svc.Login(&LoginRequest{Email: "ada@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotNil(t, resp.User.LastLoginAt)
	assert.Equal(t, registered.User.ID, sessions.Current().UserID)
}

func TestLoginBadCredentials(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newAuthService(db)

	_, err := svc.Register(&RegisterRequest{
		Username: "ada", Email: "ada@example.com", Password: testPassword,
	})
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Email: "ada@example.com", Password: "Wr0ng!pass"})
	require.Error(t, err)
	assert.Equal(t, apperrors.Unauthenticated, apperrors.KindOf(err))

	_, err = svc.Login(&LoginRequest{Email: "nobody@example.com", Password: testPassword})
	require.Error(t, err)
	assert.Equal(t, apperrors.Unauthenticated, apperrors.KindOf(err))
}

func TestLoginSuspendedAccount(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newAuthService(db)

	resp, err := svc.Register(&RegisterRequest{
		Username: "ada", Email: "ada@example.com", Password: testPassword,
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", resp.User.ID).
		Update("status", models.UserStatusSuspended).Error)

	_, err = svc.Login(&LoginRequest{Email: "ada@example.com", Password: testPassword})
	require.Error(t, err)
	assert.Equal(t, apperrors.Unauthorized, apperrors.KindOf(err))
}

func TestRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newAuthService(db)

	registered, err := svc.Register(&RegisterRequest{
		Username: "ada", Email: "ada@example.com", Password: testPassword,
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(&RefreshTokenRequest{
		RefreshToken: registered.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, registered.User.ID, refreshed.User.ID)

	_, err = svc.RefreshToken(&RefreshTokenRequest{RefreshToken: "garbage"})
	require.Error(t, err)
	assert.Equal(t, apperrors.Unauthenticated, apperrors.KindOf(err))
}

func TestGetProfile(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newAuthService(db)
	user := createTestUser(t, db, "ada")

	profile, err := svc.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", profile.Username)
}

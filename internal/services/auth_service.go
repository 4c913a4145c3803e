// internal/services/auth_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelfshare/booklend-backend/internal/apperrors"
	"github.com/shelfshare/booklend-backend/internal/config"
	"github.com/shelfshare/booklend-backend/internal/identity"
	"github.com/shelfshare/booklend-backend/internal/models"
	"github.com/shelfshare/booklend-backend/internal/utils"
)

type AuthService struct {
	db       *gorm.DB
	cfg      *config.Config
	sessions *identity.Broadcaster
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username    string                 `json:"username" validate:"required,username"`
	Email       string                 `json:"email" validate:"required,email"`
	Password    string                 `json:"password" validate:"required,strong_password"`
	ProfileData map[string]interface{} `json:"profile_data,omitempty"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func NewAuthService(db *gorm.DB, cfg *config.Config, sessions *identity.Broadcaster) *AuthService {
	return &AuthService{
		db:       db,
		cfg:      cfg,
		sessions: sessions,
	}
}

func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Ef(apperrors.InvalidInput, "validation failed: %v", err)
	}

	// Check if user already exists
	var existingUser models.User
	if err := s.db.Where("email = ? OR username = ?", req.Email, req.Username).First(&existingUser).Error; err == nil {
		if existingUser.Email == req.Email {
			return nil, apperrors.E(apperrors.InvalidInput, "user with this email already exists")
		}
		return nil, apperrors.E(apperrors.InvalidInput, "username already taken")
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		Status:      models.UserStatusActive,
		ProfileData: models.JSONB(req.ProfileData),
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperrors.Upstream("hash password", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Upstream("create user", err)
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	s.sessions.Publish(identity.Authenticate(user.ID, user.Username, user.Email))
	return resp, nil
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Ef(apperrors.InvalidInput, "validation failed: %v", err)
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.Unauthenticated, "invalid email or password")
		}
		return nil, apperrors.Upstream("fetch user", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, apperrors.E(apperrors.Unauthenticated, "invalid email or password")
	}

	if user.Status != models.UserStatusActive {
		return nil, apperrors.E(apperrors.Unauthorized, "account is not active")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.db.Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, apperrors.Upstream("update last login", err)
	}

	resp, err := s.issueTokens(&user)
	if err != nil {
		return nil, err
	}

	s.sessions.Publish(identity.Authenticate(user.ID, user.Username, user.Email))
	return resp, nil
}

// RefreshToken exchanges a valid refresh token for a fresh token pair.
func (s *AuthService) RefreshToken(req *RefreshTokenRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Ef(apperrors.InvalidInput, "validation failed: %v", err)
	}

	subject, err := utils.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, apperrors.E(apperrors.Unauthenticated, "invalid refresh token")
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, apperrors.E(apperrors.Unauthenticated, "invalid refresh token")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.Unauthenticated, "user no longer exists")
		}
		return nil, apperrors.Upstream("fetch user", err)
	}

	if user.Status != models.UserStatusActive {
		return nil, apperrors.E(apperrors.Unauthorized, "account is not active")
	}

	return s.issueTokens(&user)
}

// Logout publishes the anonymous session state. Tokens are stateless, so
// there is nothing to revoke server-side.
func (s *AuthService) Logout() {
	s.sessions.Publish(identity.Anonymous())
}

// GetProfile returns the user behind an authenticated identity.
func (s *AuthService) GetProfile(userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, apperrors.E(apperrors.Unauthenticated, "not authenticated")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.NotFound, "user not found")
		}
		return nil, apperrors.Upstream("fetch user", err)
	}
	return &user, nil
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Username, user.Email, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, apperrors.Upstream("generate access token", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, apperrors.Upstream("generate refresh token", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600,
	}, nil
}

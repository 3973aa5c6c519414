// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplite/backend/internal/config"
	"github.com/shoplite/backend/internal/models"
	"github.com/shoplite/backend/internal/utils"
)

type AuthService struct {
	db           *gorm.DB
	cfg          *config.Config
	auditService *AuditService
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,strong_password"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
	Actor        *models.User `json:"actor,omitempty"`
}

func NewAuthService(db *gorm.DB, cfg *config.Config, auditService *AuditService) *AuthService {
	return &AuthService{
		db:           db,
		cfg:          cfg,
		auditService: auditService,
	}
}

func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var existingUser models.User
	if err := s.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return nil, errors.New("user with this email already exists")
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      models.UserRoleCustomer,
		IsActive:  true,
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(user)
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid email or password")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, errors.New("invalid email or password")
	}

	if !user.IsActive {
		return nil, errors.New("account is deactivated")
	}

	now := time.Now()
	s.db.Model(&user).UpdateColumn("last_login_at", &now)
	user.LastLoginAt = &now

	return s.issueTokens(&user)
}

func (s *AuthService) RefreshToken(refreshToken string) (*AuthResponse, error) {
	userIDStr, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, errors.New("user not found")
	}

	if !user.IsActive {
		return nil, errors.New("account is deactivated")
	}

	return s.issueTokens(&user)
}

func (s *AuthService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &user, nil
}

// Impersonate issues a token acting as the given customer. The token's
// subject is the customer and the actor claim names the admin, so every
// downstream request carries both identities. Entry is audited.
func (s *AuthService) Impersonate(adminID, targetID uuid.UUID, ipAddress, userAgent string) (*AuthResponse, error) {
	var admin models.User
	if err := s.db.First(&admin, "id = ?", adminID).Error; err != nil {
		return nil, errors.New("user not found")
	}

	if !admin.IsAdmin() {
		return nil, errors.New("not authorized to impersonate users")
	}

	var target models.User
	if err := s.db.First(&target, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if target.IsAdmin() {
		return nil, errors.New("cannot impersonate another admin")
	}

	accessToken, err := utils.GenerateImpersonationJWT(
		target.ID,
		target.Email,
		string(target.Role),
		admin.ID,
		s.cfg.JWT.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate impersonation token: %w", err)
	}

	if s.auditService != nil {
		s.auditService.RecordWithRequest(&admin.ID, models.AuditActionImpersonateEnter, "user", &target.ID,
			nil, models.JSONB{"target_email": target.Email}, ipAddress, userAgent)
	}

	return &AuthResponse{
		User:        &target,
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   s.cfg.JWT.AccessTokenTTL * 3600,
		Actor:       &admin,
	}, nil
}

// ExitImpersonation ends an impersonated session and re-issues the
// admin's own tokens. Exit is audited.
func (s *AuthService) ExitImpersonation(actorID, subjectID uuid.UUID, ipAddress, userAgent string) (*AuthResponse, error) {
	var admin models.User
	if err := s.db.First(&admin, "id = ?", actorID).Error; err != nil {
		return nil, errors.New("user not found")
	}

	if !admin.IsAdmin() {
		return nil, errors.New("not authorized to exit impersonation")
	}

	if s.auditService != nil {
		s.auditService.RecordWithRequest(&admin.ID, models.AuditActionImpersonateExit, "user", &subjectID,
			nil, nil, ipAddress, userAgent)
	}

	return s.issueTokens(&admin)
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(
		user.ID,
		user.Email,
		string(user.Role),
		s.cfg.JWT.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600,
	}, nil
}

// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplite/backend/internal/models"
	"github.com/shoplite/backend/internal/utils"
)

type UserService struct {
	db           *gorm.DB
	auditService *AuditService
}

type UpdateProfileRequest struct {
	FirstName       string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName        string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	ProfileImageURL string `json:"profile_image_url,omitempty" validate:"omitempty,url"`
	Password        string `json:"password,omitempty" validate:"omitempty,strong_password"`
}

type AdminUpdateUserRequest struct {
	FirstName string          `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  string          `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Email     string          `json:"email,omitempty" validate:"omitempty,email"`
	Role      models.UserRole `json:"role,omitempty"`
}

type SetUserStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func NewUserService(db *gorm.DB, auditService *AuditService) *UserService {
	return &UserService{
		db:           db,
		auditService: auditService,
	}
}

func (s *UserService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

// ListUsers backs the admin customer table: pagination plus substring
// search across name and email.
func (s *UserService) ListUsers(params utils.PaginationParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?",
			searchTerm, searchTerm, searchTerm,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "email", "first_name", "last_name"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

func (s *UserService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.ProfileImageURL != "" {
		user.ProfileImageURL = req.ProfileImageURL
	}
	if req.Password != "" {
		if err := user.SetPassword(req.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &user, nil
}

func (s *UserService) AdminUpdateUser(targetID uuid.UUID, actorID uuid.UUID, req *AdminUpdateUserRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	oldValues := models.JSONB{
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"email":      user.Email,
		"role":       string(user.Role),
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Email != "" && req.Email != user.Email {
		var existing models.User
		if err := s.db.Where("email = ? AND id != ?", req.Email, targetID).First(&existing).Error; err == nil {
			return nil, errors.New("user with this email already exists")
		}
		user.Email = req.Email
	}
	if req.Role != "" {
		if req.Role != models.UserRoleCustomer && req.Role != models.UserRoleAdmin {
			return nil, errors.New("invalid role")
		}
		user.Role = req.Role
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if s.auditService != nil {
		go s.auditService.Record(&actorID, models.AuditActionUserUpdate, "user", &user.ID,
			oldValues, models.JSONB{
				"first_name": user.FirstName,
				"last_name":  user.LastName,
				"email":      user.Email,
				"role":       string(user.Role),
			})
	}

	return &user, nil
}

// SetUserStatus activates or deactivates an account. Deactivated users
// are refused at login but their history stays intact.
func (s *UserService) SetUserStatus(targetID uuid.UUID, actorID uuid.UUID, req *SetUserStatusRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	oldActive := user.IsActive
	user.IsActive = *req.IsActive

	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}

	if s.auditService != nil {
		go s.auditService.Record(&actorID, models.AuditActionUserStatusSet, "user", &user.ID,
			models.JSONB{"is_active": oldActive},
			models.JSONB{"is_active": user.IsActive})
	}

	return &user, nil
}

func (s *UserService) DeleteUser(targetID uuid.UUID, actorID uuid.UUID) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("user not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if user.IsAdmin() {
		return errors.New("cannot delete an admin account")
	}

	if err := s.db.Delete(&user).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if s.auditService != nil {
		go s.auditService.Record(&actorID, models.AuditActionUserDelete, "user", &user.ID,
			models.JSONB{"email": user.Email}, nil)
	}

	return nil
}

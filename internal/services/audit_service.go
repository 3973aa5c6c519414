// internal/services/audit_service.go
package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shoplite/backend/internal/models"
)

// AuditService persists the audit trail. Writes are best-effort; a
// failed audit row is logged but never fails the caller's request.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) Record(userID *uuid.UUID, action, resourceType string, resourceID *uuid.UUID, oldValues, newValues models.JSONB) {
	entry := models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OldValues:    oldValues,
		NewValues:    newValues,
	}

	if err := s.db.Create(&entry).Error; err != nil {
		logrus.WithError(err).WithField("action", action).Error("Failed to write audit log")
	}
}

func (s *AuditService) RecordWithRequest(userID *uuid.UUID, action, resourceType string, resourceID *uuid.UUID, oldValues, newValues models.JSONB, ipAddress, userAgent string) {
	entry := models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OldValues:    oldValues,
		NewValues:    newValues,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
	}

	if err := s.db.Create(&entry).Error; err != nil {
		logrus.WithError(err).WithField("action", action).Error("Failed to write audit log")
	}
}

// ListForResource returns the trail for one resource, newest first.
func (s *AuditService) ListForResource(resourceType string, resourceID uuid.UUID, limit int) ([]models.AuditLog, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var entries []models.AuditLog
	if err := s.db.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}

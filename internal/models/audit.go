// internal/models/audit.go
package models

import (
	"github.com/google/uuid"
)

type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	OldValues    JSONB      `json:"old_values" gorm:"type:jsonb"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Audit action names. Impersonation must always leave a trail, so the
// enter/exit pair is defined here rather than ad hoc at call sites.
const (
	AuditActionImpersonateEnter = "impersonation_enter"
	AuditActionImpersonateExit  = "impersonation_exit"
	AuditActionOrderStatusSet   = "order_status_update"
	AuditActionOrderDelete      = "order_delete"
	AuditActionUserStatusSet    = "user_status_update"
	AuditActionUserUpdate       = "user_update"
	AuditActionUserDelete       = "user_delete"
)

// internal/models/admin.go
package models

import (
	"github.com/google/uuid"
)

type AuditLog struct {
	RecordModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	OldValues    JSONB      `json:"old_values" gorm:"type:jsonb"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`

	// Relationships
	User *Profile `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Audit actions
const (
	AuditActionProductCreate  = "product.create"
	AuditActionProductApprove = "product.approve"
	AuditActionProductReject  = "product.reject"
	AuditActionProductDelete  = "product.delete"
	AuditActionPurchase       = "product.purchase"
	AuditActionHomepageUpdate = "homepage.update"
)

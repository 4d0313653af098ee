// internal/services/audit.go
package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/snapstudio/marketplace-backend/internal/models"
)

// writeAuditLog records an action inside the caller's transaction so the log
// row commits or rolls back with the change it describes.
func writeAuditLog(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, action, resourceType string, resourceID uuid.UUID, oldValues, newValues models.JSONB) error {
	meta := requestMetaFrom(ctx)
	entry := &models.AuditLog{
		UserID:       &actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   &resourceID,
		OldValues:    oldValues,
		NewValues:    newValues,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	}
	if err := tx.Create(entry).Error; err != nil {
		return storageError("write audit log", err)
	}
	return nil
}

// internal/services/identity.go
package services

import (
	"github.com/google/uuid"

	"github.com/snapstudio/marketplace-backend/internal/models"
)

// Identity is the authenticated caller of an operation. The zero value is an
// anonymous caller.
type Identity struct {
	UserID uuid.UUID
	Role   models.UserRole
}

func (i Identity) Authenticated() bool {
	return i.UserID != uuid.Nil
}

func (i Identity) IsAdmin() bool {
	return i.Authenticated() && i.Role == models.UserRoleAdmin
}

// CanManage reports whether the caller owns ownerID's resources or is an
// admin.
func (i Identity) CanManage(ownerID uuid.UUID) bool {
	return i.Authenticated() && (i.UserID == ownerID || i.IsAdmin())
}

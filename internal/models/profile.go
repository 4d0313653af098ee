// internal/models/profile.go
package models

import (
	"github.com/shopspring/decimal"
)

// Profile mirrors a user of the external identity provider. The ID is the
// provider's subject, so rows are created on first contact rather than at
// sign up.
type Profile struct {
	BaseModel
	Email       string          `json:"email,omitempty" gorm:"uniqueIndex;size:255;not null"`
	Username    *string         `json:"username" gorm:"size:50"`
	DisplayName *string         `json:"display_name" gorm:"size:100"`
	AvatarURL   *string         `json:"avatar_url" gorm:"type:text"`
	Bio         *string         `json:"bio" gorm:"type:text"`
	Role        UserRole        `json:"role" gorm:"type:varchar(20);not null;default:'user';index"`
	Balance     decimal.Decimal `json:"balance" gorm:"type:decimal(12,2);not null;default:0"`

	// Relationships
	Products []Product `json:"products,omitempty" gorm:"foreignKey:CreatorID"`
}

// Name returns the best label for the profile.
func (p *Profile) Name() string {
	if p.DisplayName != nil && *p.DisplayName != "" {
		return *p.DisplayName
	}
	if p.Username != nil && *p.Username != "" {
		return *p.Username
	}
	return p.Email
}

func (p *Profile) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

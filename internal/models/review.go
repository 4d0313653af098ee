// internal/models/review.go
package models

import (
	"github.com/google/uuid"
)

type Review struct {
	RecordModel
	ProductID          uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_product;index"`
	UserID             uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_product"`
	Rating             int       `json:"rating" gorm:"not null"`
	Comment            *string   `json:"comment" gorm:"type:text"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase" gorm:"not null;default:true"`

	// Relationships
	Product *Product `json:"-" gorm:"foreignKey:ProductID"`
	User    *Profile `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

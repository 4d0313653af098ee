// internal/models/product.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	CreatorID     uuid.UUID       `json:"creator_id" gorm:"type:uuid;not null;index"`
	Title         string          `json:"title" gorm:"size:255;not null"`
	Slug          string          `json:"slug" gorm:"size:120;not null;uniqueIndex"`
	Description   *string         `json:"description" gorm:"type:text"`
	Category      *string         `json:"category" gorm:"size:100;index"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	CoverImage    *string         `json:"cover_image" gorm:"type:text"`
	PreviewImages []string        `json:"preview_images" gorm:"serializer:json;type:text"`
	FileURL       *string         `json:"-" gorm:"type:text"`
	FileType      *string         `json:"file_type" gorm:"size:50"`
	FileSize      *int64          `json:"file_size"`
	Status        ProductStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ViewCount     int64           `json:"view_count" gorm:"not null;default:0"`
	DownloadCount int64           `json:"download_count" gorm:"not null;default:0"`
	AvgRating     decimal.Decimal `json:"avg_rating" gorm:"type:decimal(3,2);not null;default:0"`
	RatingCount   int64           `json:"rating_count" gorm:"not null;default:0"`
	WeightedScore decimal.Decimal `json:"weighted_score" gorm:"type:decimal(5,4);not null;default:0;index"`
	IsFeatured    bool            `json:"is_featured" gorm:"not null;default:false"`
	PublishedAt   *time.Time      `json:"published_at" gorm:"index"`

	// Relationships
	Creator *Profile `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`
	Splits  []Split  `json:"splits,omitempty" gorm:"foreignKey:ProductID"`
}

// IsVisible reports whether buyers may see and purchase the product.
func (p *Product) IsVisible() bool {
	return p.Status == ProductStatusApproved
}

// Split is a declared share of the creator-side revenue of a product.
type Split struct {
	RecordModel
	ProductID       uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;index"`
	UserID          uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	Percentage      decimal.Decimal `json:"percentage" gorm:"type:decimal(5,2);not null"`
	RoleDescription *string         `json:"role_description" gorm:"size:255"`

	// Relationships
	Product *Product `json:"-" gorm:"foreignKey:ProductID"`
	User    *Profile `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

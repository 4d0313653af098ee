// internal/models/post.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a blog entry shown on the homepage and the blog index.
type Post struct {
	BaseModel
	AuthorID    uuid.UUID  `json:"author_id" gorm:"type:uuid;not null;index"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Slug        string     `json:"slug" gorm:"size:120;not null;uniqueIndex"`
	Excerpt     *string    `json:"excerpt" gorm:"type:text"`
	Content     string     `json:"content" gorm:"type:text;not null"`
	CoverImage  *string    `json:"cover_image" gorm:"type:text"`
	IsPublished bool       `json:"is_published" gorm:"not null;default:false;index"`
	IsFeatured  bool       `json:"is_featured" gorm:"not null;default:false"`
	ViewCount   int64      `json:"view_count" gorm:"not null;default:0"`
	PublishedAt *time.Time `json:"published_at" gorm:"index"`

	// Relationships
	Author *Profile `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

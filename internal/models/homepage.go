// internal/models/homepage.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// HomepageSettingsID is the primary key of the single settings row.
var HomepageSettingsID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type HomepageSettings struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	HeroTitle     string     `json:"hero_title" gorm:"size:255;not null"`
	HeroSubtitle  string     `json:"hero_subtitle" gorm:"type:text"`
	HeroCTAText   string     `json:"hero_cta_text" gorm:"size:100"`
	HeroCTALink   string     `json:"hero_cta_link" gorm:"size:255"`
	FeaturedTitle string     `json:"featured_title" gorm:"size:255"`
	LatestTitle   string     `json:"latest_title" gorm:"size:255"`
	BlogTitle     string     `json:"blog_title" gorm:"size:255"`
	ShowFeatured  bool       `json:"show_featured" gorm:"not null"`
	ShowLatest    bool       `json:"show_latest" gorm:"not null"`
	ShowBlog      bool       `json:"show_blog" gorm:"not null"`
	UpdatedBy     *uuid.UUID `json:"updated_by" gorm:"type:uuid"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// DefaultHomepageSettings is served until an admin saves the row.
func DefaultHomepageSettings() HomepageSettings {
	return HomepageSettings{
		ID:            HomepageSettingsID,
		HeroTitle:     "Discover digital creations",
		HeroSubtitle:  "Presets, templates and assets from independent creators.",
		HeroCTAText:   "Browse products",
		HeroCTALink:   "/products",
		FeaturedTitle: "Top rated",
		LatestTitle:   "Just published",
		BlogTitle:     "From the blog",
		ShowFeatured:  true,
		ShowLatest:    true,
		ShowBlog:      true,
	}
}

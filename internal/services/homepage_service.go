// internal/services/homepage_service.go
package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/snapstudio/marketplace-backend/internal/database"
	"github.com/snapstudio/marketplace-backend/internal/models"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

const homepageSectionSize = 8

type HomepageService struct {
	db    *gorm.DB
	cache *CacheService
}

type HomepageFeed struct {
	Settings   models.HomepageSettings `json:"settings"`
	TopRated   []models.Product        `json:"top_rated"`
	Latest     []models.Product        `json:"latest"`
	LatestPost *models.Post            `json:"latest_post,omitempty"`
}

type UpdateHomepageRequest struct {
	HeroTitle     *string `json:"hero_title,omitempty" validate:"omitempty,min=1,max=255"`
	HeroSubtitle  *string `json:"hero_subtitle,omitempty" validate:"omitempty,max=1000"`
	HeroCTAText   *string `json:"hero_cta_text,omitempty" validate:"omitempty,max=100"`
	HeroCTALink   *string `json:"hero_cta_link,omitempty" validate:"omitempty,max=255"`
	FeaturedTitle *string `json:"featured_title,omitempty" validate:"omitempty,max=255"`
	LatestTitle   *string `json:"latest_title,omitempty" validate:"omitempty,max=255"`
	BlogTitle     *string `json:"blog_title,omitempty" validate:"omitempty,max=255"`
	ShowFeatured  *bool   `json:"show_featured,omitempty"`
	ShowLatest    *bool   `json:"show_latest,omitempty"`
	ShowBlog      *bool   `json:"show_blog,omitempty"`
}

func NewHomepageService(db *gorm.DB, cache *CacheService) *HomepageService {
	return &HomepageService{
		db:    db,
		cache: cache,
	}
}

// GetHomepage assembles the homepage feed, served from cache when possible.
func (s *HomepageService) GetHomepage(ctx context.Context) (*HomepageFeed, error) {
	var feed HomepageFeed
	if s.cache.GetJSON(ctx, CacheKeyHomepage, &feed) {
		return &feed, nil
	}

	db := s.db.WithContext(ctx)

	settings, err := s.loadSettings(db)
	if err != nil {
		return nil, err
	}
	feed.Settings = *settings
	feed.TopRated = []models.Product{}
	feed.Latest = []models.Product{}

	approved := func() *gorm.DB {
		return db.Preload("Creator", publicProfile).Where("status = ?", models.ProductStatusApproved).Limit(homepageSectionSize)
	}

	if settings.ShowFeatured {
		if err := approved().Order("weighted_score desc, rating_count desc").Find(&feed.TopRated).Error; err != nil {
			return nil, storageError("fetch top rated products", err)
		}
	}

	if settings.ShowLatest {
		if err := approved().Order("published_at desc").Find(&feed.Latest).Error; err != nil {
			return nil, storageError("fetch latest products", err)
		}
	}

	if settings.ShowBlog {
		var post models.Post
		err := db.Where("is_published = ?", true).Order("published_at desc").First(&post).Error
		switch {
		case err == nil:
			feed.LatestPost = &post
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, storageError("fetch latest post", err)
		}
	}

	s.cache.SetJSON(ctx, CacheKeyHomepage, &feed)
	return &feed, nil
}

func (s *HomepageService) UpdateHomepageSettings(ctx context.Context, admin Identity, req *UpdateHomepageRequest) (*models.HomepageSettings, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, invalidInput(err)
	}

	var settings *models.HomepageSettings
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var err error
		settings, err = s.loadSettings(tx)
		if err != nil {
			return err
		}

		applyHomepageUpdates(settings, req)
		settings.UpdatedBy = &admin.UserID

		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(settings).Error; err != nil {
			return storageError("save homepage settings", err)
		}

		return writeAuditLog(ctx, tx, admin.UserID, models.AuditActionHomepageUpdate, "homepage_settings", settings.ID, nil, models.JSONB{
			"hero_title": settings.HeroTitle,
		})
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, CacheKeyHomepage)
	logrus.WithField("admin_id", admin.UserID).Info("Homepage settings updated")

	return settings, nil
}

func (s *HomepageService) loadSettings(db *gorm.DB) (*models.HomepageSettings, error) {
	var settings models.HomepageSettings
	if err := db.Where("id = ?", models.HomepageSettingsID).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			defaults := models.DefaultHomepageSettings()
			return &defaults, nil
		}
		return nil, storageError("load homepage settings", err)
	}
	return &settings, nil
}

func applyHomepageUpdates(settings *models.HomepageSettings, req *UpdateHomepageRequest) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&settings.HeroTitle, req.HeroTitle)
	setString(&settings.HeroSubtitle, req.HeroSubtitle)
	setString(&settings.HeroCTAText, req.HeroCTAText)
	setString(&settings.HeroCTALink, req.HeroCTALink)
	setString(&settings.FeaturedTitle, req.FeaturedTitle)
	setString(&settings.LatestTitle, req.LatestTitle)
	setString(&settings.BlogTitle, req.BlogTitle)
	setBool(&settings.ShowFeatured, req.ShowFeatured)
	setBool(&settings.ShowLatest, req.ShowLatest)
	setBool(&settings.ShowBlog, req.ShowBlog)
}

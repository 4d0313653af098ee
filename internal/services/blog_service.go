// internal/services/blog_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/snapstudio/marketplace-backend/internal/models"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

type BlogService struct {
	db    *gorm.DB
	cache *CacheService
}

type CreatePostRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Excerpt     string `json:"excerpt,omitempty" validate:"max=1000"`
	Content     string `json:"content" validate:"required"`
	CoverImage  string `json:"cover_image,omitempty" validate:"omitempty,url"`
	IsPublished bool   `json:"is_published"`
	IsFeatured  bool   `json:"is_featured"`
}

type UpdatePostRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Excerpt     *string `json:"excerpt,omitempty" validate:"omitempty,max=1000"`
	Content     *string `json:"content,omitempty" validate:"omitempty,min=1"`
	CoverImage  *string `json:"cover_image,omitempty" validate:"omitempty,url"`
	IsPublished *bool   `json:"is_published,omitempty"`
	IsFeatured  *bool   `json:"is_featured,omitempty"`
}

func NewBlogService(db *gorm.DB, cache *CacheService) *BlogService {
	return &BlogService{
		db:    db,
		cache: cache,
	}
}

func (s *BlogService) CreatePost(ctx context.Context, admin Identity, req *CreatePostRequest) (*models.Post, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, invalidInput(err)
	}

	post := &models.Post{
		AuthorID:    admin.UserID,
		Title:       strings.TrimSpace(req.Title),
		Slug:        utils.UniqueSlug(req.Title, time.Now()),
		Excerpt:     optionalString(req.Excerpt),
		Content:     req.Content,
		CoverImage:  optionalString(req.CoverImage),
		IsPublished: req.IsPublished,
		IsFeatured:  req.IsFeatured,
	}
	if post.IsPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, storageError("create post", err)
	}

	if post.IsPublished {
		s.cache.Invalidate(ctx, CacheKeyHomepage)
	}

	logrus.WithFields(logrus.Fields{
		"post_id":   post.ID,
		"published": post.IsPublished,
	}).Info("Post created")

	return post, nil
}

// UpdatePost applies the given fields. published_at is set the first time
// a post is published.
func (s *BlogService) UpdatePost(ctx context.Context, admin Identity, postID uuid.UUID, req *UpdatePostRequest) (*models.Post, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, invalidInput(err)
	}

	post, err := s.findPost(ctx, "id = ?", postID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Excerpt != nil {
		updates["excerpt"] = optionalString(*req.Excerpt)
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.CoverImage != nil {
		updates["cover_image"] = optionalString(*req.CoverImage)
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
		if *req.IsPublished && post.PublishedAt == nil {
			updates["published_at"] = time.Now()
		}
	}

	return s.applyUpdates(ctx, post, updates)
}

// TogglePostStatus flips a post between published and draft.
func (s *BlogService) TogglePostStatus(ctx context.Context, admin Identity, postID uuid.UUID) (*models.Post, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	post, err := s.findPost(ctx, "id = ?", postID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"is_published": !post.IsPublished}
	if !post.IsPublished && post.PublishedAt == nil {
		updates["published_at"] = time.Now()
	}

	return s.applyUpdates(ctx, post, updates)
}

func (s *BlogService) DeletePost(ctx context.Context, admin Identity, postID uuid.UUID) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}

	post, err := s.findPost(ctx, "id = ?", postID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(post).Error; err != nil {
		return storageError("delete post", err)
	}

	s.cache.Invalidate(ctx, CacheKeyHomepage)
	logrus.WithField("post_id", postID).Info("Post deleted")
	return nil
}

// ListPosts returns every post to admins and published posts to everyone
// else.
func (s *BlogService) ListPosts(ctx context.Context, viewer Identity, params utils.PaginationParams) ([]models.Post, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Post{})
	if !viewer.IsAdmin() {
		query = query.Where("is_published = ?", true)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ?", searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError("count posts", err)
	}

	var posts []models.Post
	if err := utils.ApplyPagination(query.Preload("Author", publicProfile).Order("published_at desc, created_at desc"), params).
		Find(&posts).Error; err != nil {
		return nil, 0, storageError("fetch posts", err)
	}

	return posts, total, nil
}

func (s *BlogService) GetPostBySlug(ctx context.Context, viewer Identity, slug string) (*models.Post, error) {
	post, err := s.findPost(ctx, "slug = ?", slug)
	if err != nil {
		return nil, err
	}

	if !post.IsPublished && !viewer.IsAdmin() {
		return nil, ErrNotFound
	}

	if post.IsPublished {
		if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error; err != nil {
			logrus.WithError(err).WithField("post_id", post.ID).Warn("Failed to increment view count")
		}
	}

	return post, nil
}

func (s *BlogService) findPost(ctx context.Context, condition string, value interface{}) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("Author", publicProfile).Where(condition, value).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("load post", err)
	}
	return &post, nil
}

func (s *BlogService) applyUpdates(ctx context.Context, post *models.Post, updates map[string]interface{}) (*models.Post, error) {
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", post.ID).Updates(updates).Error; err != nil {
			return nil, storageError("update post", err)
		}
		s.cache.Invalidate(ctx, CacheKeyHomepage)
	}

	return s.findPost(ctx, "id = ?", post.ID)
}

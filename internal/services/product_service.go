// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/snapstudio/marketplace-backend/internal/database"
	"github.com/snapstudio/marketplace-backend/internal/models"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

type ProductService struct {
	db       *gorm.DB
	profiles *ProfileService
}

type CreateProductRequest struct {
	Title         string          `json:"title" validate:"required,min=1,max=255"`
	Description   string          `json:"description,omitempty" validate:"max=10000"`
	Category      string          `json:"category,omitempty" validate:"max=100"`
	Price         decimal.Decimal `json:"price" validate:"gte=0,lte=1000000"`
	CoverImage    string          `json:"cover_image,omitempty" validate:"omitempty,url"`
	PreviewImages []string        `json:"preview_images,omitempty" validate:"max=10,dive,url"`
	FileURL       string          `json:"file_url,omitempty" validate:"omitempty,url"`
	FileType      string          `json:"file_type,omitempty" validate:"max=50"`
	FileSize      int64           `json:"file_size,omitempty" validate:"gte=0"`
	Splits        []SplitRequest  `json:"splits,omitempty" validate:"max=10,dive"`
}

// Catalog sort keys
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortPopular   = "popular"
)

var productSortOrders = map[string]string{
	SortNewest:    "published_at desc, created_at desc",
	SortPriceAsc:  "price asc",
	SortPriceDesc: "price desc",
	SortRating:    "weighted_score desc, rating_count desc",
	SortPopular:   "download_count desc, view_count desc",
}

func NewProductService(db *gorm.DB, profiles *ProfileService) *ProductService {
	return &ProductService{
		db:       db,
		profiles: profiles,
	}
}

// CreateProduct validates the split configuration, grants the creator
// capability and stores the product as pending review, all in one
// transaction.
func (s *ProductService) CreateProduct(ctx context.Context, creator Identity, req *CreateProductRequest) (*models.Product, error) {
	if !creator.Authenticated() {
		return nil, ErrUnauthenticated
	}

	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, invalidInput(err)
	}
	if !req.Price.Equal(req.Price.Round(2)) {
		return nil, invalidInput(errors.New("price has more than two decimals"))
	}
	if err := ValidateSplitPercentages(req.Splits); err != nil {
		return nil, err
	}

	product := &models.Product{
		CreatorID:     creator.UserID,
		Title:         strings.TrimSpace(req.Title),
		Slug:          utils.UniqueSlug(req.Title, time.Now()),
		Description:   optionalString(req.Description),
		Category:      optionalString(req.Category),
		Price:         req.Price,
		CoverImage:    optionalString(req.CoverImage),
		PreviewImages: req.PreviewImages,
		FileURL:       optionalString(req.FileURL),
		FileType:      optionalString(req.FileType),
		Status:        models.ProductStatusPending,
	}
	if req.FileSize > 0 {
		product.FileSize = &req.FileSize
	}
	if product.PreviewImages == nil {
		product.PreviewImages = []string{}
	}

	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		splits, err := BuildSplits(tx, creator.UserID, req.Splits)
		if err != nil {
			return err
		}

		if err := s.profiles.GrantCreatorCapability(tx, creator.UserID); err != nil {
			return err
		}

		if err := tx.Create(product).Error; err != nil {
			return storageError("create product", err)
		}

		for i := range splits {
			splits[i].ProductID = product.ID
		}
		if err := tx.Create(&splits).Error; err != nil {
			return storageError("create splits", err)
		}
		product.Splits = splits

		return writeAuditLog(ctx, tx, creator.UserID, models.AuditActionProductCreate, "product", product.ID, nil, models.JSONB{
			"title":  product.Title,
			"price":  product.Price.StringFixed(2),
			"splits": len(splits),
		})
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"creator_id": creator.UserID,
		"slug":       product.Slug,
	}).Info("Product submitted for review")

	return product, nil
}

// GetProduct looks a product up by id or slug. Products that are not
// approved are only visible to their creator and admins.
func (s *ProductService) GetProduct(ctx context.Context, viewer Identity, ref string) (*models.Product, error) {
	db := s.db.WithContext(ctx)

	product, err := findProduct(db.Preload("Creator", publicProfile), ref)
	if err != nil {
		return nil, err
	}

	if !product.IsVisible() && !viewer.CanManage(product.CreatorID) {
		return nil, ErrNotFound
	}

	if viewer.CanManage(product.CreatorID) {
		if err := db.Preload("User").Where("product_id = ?", product.ID).Order("created_at asc").Find(&product.Splits).Error; err != nil {
			return nil, storageError("load splits", err)
		}
	}

	// Increment view count if not the creator viewing
	if viewer.UserID != product.CreatorID {
		if err := db.Model(&models.Product{}).Where("id = ?", product.ID).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error; err != nil {
			logrus.WithError(err).WithField("product_id", product.ID).Warn("Failed to increment view count")
		}
	}

	return product, nil
}

// BrowseProducts lists approved products.
func (s *ProductService) BrowseProducts(ctx context.Context, params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("status = ?", models.ProductStatusApproved)

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError("count products", err)
	}

	order, ok := productSortOrders[params.Sort]
	if !ok {
		order = productSortOrders[SortNewest]
	}
	query = utils.ApplyPagination(query.Order(order), params)

	var products []models.Product
	if err := query.Preload("Creator", publicProfile).Find(&products).Error; err != nil {
		return nil, 0, storageError("fetch products", err)
	}

	return products, total, nil
}

var creatorProductSortColumns = []string{"created_at", "updated_at", "title", "price", "status", "view_count", "download_count"}

// ListCreatorProducts returns every product of a creator regardless of status.
func (s *ProductService) ListCreatorProducts(ctx context.Context, creatorID uuid.UUID, params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{}).Where("creator_id = ?", creatorID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError("count products", err)
	}

	var products []models.Product
	sorted := utils.ApplySort(query, params, creatorProductSortColumns...)
	if err := utils.ApplyPagination(sorted, params).Find(&products).Error; err != nil {
		return nil, 0, storageError("fetch products", err)
	}

	return products, total, nil
}

func (s *ProductService) ListProductReviews(ctx context.Context, viewer Identity, ref string, params utils.PaginationParams) ([]models.Review, int64, error) {
	db := s.db.WithContext(ctx)

	product, err := findProduct(db, ref)
	if err != nil {
		return nil, 0, err
	}
	if !product.IsVisible() && !viewer.CanManage(product.CreatorID) {
		return nil, 0, ErrNotFound
	}

	query := db.Model(&models.Review{}).Where("product_id = ?", product.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError("count reviews", err)
	}

	var reviews []models.Review
	if err := utils.ApplyPagination(query.Preload("User", publicProfile).Order("created_at desc"), params).Find(&reviews).Error; err != nil {
		return nil, 0, storageError("fetch reviews", err)
	}

	return reviews, total, nil
}

// findProduct resolves ref as an id when it parses as one, otherwise as a slug.
func findProduct(db *gorm.DB, ref string) (*models.Product, error) {
	var product models.Product

	column, value := "slug", interface{}(ref)
	if id, err := uuid.Parse(ref); err == nil {
		column, value = "id", id
	}

	if err := db.Where(column+" = ?", value).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("load product", err)
	}
	return &product, nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// internal/handlers/product.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/snapstudio/marketplace-backend/internal/i18n"
	"github.com/snapstudio/marketplace-backend/internal/services"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

type ProductHandler struct {
	productService    *services.ProductService
	moderationService *services.ModerationService
	reviewService     *services.ReviewService
}

func NewProductHandler(productService *services.ProductService, moderationService *services.ModerationService, reviewService *services.ReviewService) *ProductHandler {
	return &ProductHandler{
		productService:    productService,
		moderationService: moderationService,
		reviewService:     reviewService,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	products, total, err := h.productService.BrowseProducts(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), currentIdentity(c), c.Param("id"))
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": product,
	})
}

// GET /products/:id/reviews
func (h *ProductHandler) GetProductReviews(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	reviews, total, err := h.productService.ListProductReviews(c.Request.Context(), currentIdentity(c), c.Param("id"), params)
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	result := utils.CreatePaginationResult(reviews, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), currentIdentity(c), &req)
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductCreated),
		"product": product,
	})
}

// POST /products/:id/reviews
func (h *ProductHandler) CreateReview(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.SubmitReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.SubmitReview(c.Request.Context(), currentIdentity(c), productID, &req)
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReviewCreated),
		"review":  review,
	})
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.moderationService.DeleteProduct(c.Request.Context(), currentIdentity(c), productID); err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductDeleted),
	})
}

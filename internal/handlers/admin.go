// internal/handlers/admin.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/snapstudio/marketplace-backend/internal/i18n"
	"github.com/snapstudio/marketplace-backend/internal/models"
	"github.com/snapstudio/marketplace-backend/internal/services"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

type AdminHandler struct {
	adminService      *services.AdminService
	moderationService *services.ModerationService
	homepageService   *services.HomepageService
}

func NewAdminHandler(adminService *services.AdminService, moderationService *services.ModerationService, homepageService *services.HomepageService) *AdminHandler {
	return &AdminHandler{
		adminService:      adminService,
		moderationService: moderationService,
		homepageService:   homepageService,
	}
}

type moderationFunc func(ctx context.Context, admin services.Identity, productID uuid.UUID) (*models.Product, error)

// GET /admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetPlatformStats(c.Request.Context(), currentIdentity(c))
	if err != nil {
		respondError(c, err, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// GET /admin/products?status=pending
func (h *AdminHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	status := models.ProductStatus(c.Query("status"))

	products, total, err := h.moderationService.ListProductsForModeration(c.Request.Context(), currentIdentity(c), status, params)
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// PUT /admin/products/:id/approve
func (h *AdminHandler) ApproveProduct(c *gin.Context) {
	h.moderate(c, h.moderationService.ApproveProduct, i18n.KeyProductApproved)
}

// PUT /admin/products/:id/reject
func (h *AdminHandler) RejectProduct(c *gin.Context) {
	h.moderate(c, h.moderationService.RejectProduct, i18n.KeyProductRejected)
}

func (h *AdminHandler) moderate(c *gin.Context, transition moderationFunc, messageKey string) {
	lang := utils.GetLangFromContext(c)
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := transition(c.Request.Context(), currentIdentity(c), productID)
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, messageKey),
		"product": product,
	})
}

// DELETE /admin/products/:id
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
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

// GET /admin/audit-logs
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	filter := services.AuditLogFilter{
		PaginationParams: params,
		Action:           c.Query("action"),
		ResourceType:     c.Query("resource_type"),
	}

	logs, total, err := h.adminService.ListAuditLogs(c.Request.Context(), currentIdentity(c), filter)
	if err != nil {
		respondError(c, err, "")
		return
	}

	result := utils.CreatePaginationResult(logs, total, params)
	utils.PaginatedResponse(c, result)
}

// PUT /admin/homepage
func (h *AdminHandler) UpdateHomepage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.UpdateHomepageRequest
	if !bindJSON(c, &req) {
		return
	}

	settings, err := h.homepageService.UpdateHomepageSettings(c.Request.Context(), currentIdentity(c), &req)
	if err != nil {
		respondError(c, err, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyAdminSettingsUpdated),
		"settings": settings,
	})
}

// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/snapstudio/marketplace-backend/internal/i18n"
	"github.com/snapstudio/marketplace-backend/internal/services"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

type UserHandler struct {
	profileService *services.ProfileService
	productService *services.ProductService
}

func NewUserHandler(profileService *services.ProfileService, productService *services.ProductService) *UserHandler {
	return &UserHandler{
		profileService: profileService,
		productService: productService,
	}
}

// GET /me
func (h *UserHandler) GetMe(c *gin.Context) {
	caller := currentIdentity(c)
	if !caller.Authenticated() {
		utils.UnauthorizedResponse(c, "")
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), caller.UserID)
	if err != nil {
		respondError(c, err, i18n.KeyProfileNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"profile": profile,
	})
}

// PUT /me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), currentIdentity(c), &req)
	if err != nil {
		respondError(c, err, i18n.KeyProfileNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProfileUpdated),
		"profile": profile,
	})
}

// GET /me/products
func (h *UserHandler) GetMyProducts(c *gin.Context) {
	caller := currentIdentity(c)
	if !caller.Authenticated() {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	products, total, err := h.productService.ListCreatorProducts(c.Request.Context(), caller.UserID, params)
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/snapstudio/marketplace-backend/internal/i18n"
	"github.com/snapstudio/marketplace-backend/internal/services"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

type PaymentHandler struct {
	settlementService *services.SettlementService
	paymentService    *services.PaymentService
}

func NewPaymentHandler(settlementService *services.SettlementService, paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		settlementService: settlementService,
		paymentService:    paymentService,
	}
}

// POST /products/:id/purchase
func (h *PaymentHandler) PurchaseProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	transaction, err := h.settlementService.Purchase(c.Request.Context(), currentIdentity(c), productID)
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyPurchaseSuccess),
		"transaction": transaction,
	})
}

// GET /products/:id/download
func (h *PaymentHandler) DownloadProduct(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	link, err := h.paymentService.GetDownloadURL(c.Request.Context(), currentIdentity(c), productID)
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.SuccessResponse(c, link)
}

// GET /me/purchases
func (h *PaymentHandler) GetPurchases(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	purchases, total, err := h.paymentService.ListPurchases(c.Request.Context(), currentIdentity(c), params)
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	result := utils.CreatePaginationResult(purchases, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /me/earnings
func (h *PaymentHandler) GetEarnings(c *gin.Context) {
	earnings, err := h.paymentService.GetEarnings(c.Request.Context(), currentIdentity(c))
	if err != nil {
		respondError(c, err, i18n.KeyProfileNotFound)
		return
	}

	utils.SuccessResponse(c, earnings)
}

// GET /me/dashboard
func (h *PaymentHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.paymentService.GetCreatorDashboard(c.Request.Context(), currentIdentity(c))
	if err != nil {
		respondError(c, err, i18n.KeyProfileNotFound)
		return
	}

	utils.SuccessResponse(c, dashboard)
}

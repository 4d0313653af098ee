// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/snapstudio/marketplace-backend/internal/i18n"
	"github.com/snapstudio/marketplace-backend/internal/services"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

type errorMapping struct {
	kind   error
	status int
	code   string
	key    string
}

var errorMappings = []errorMapping{
	{services.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHORIZED", i18n.KeyAuthRequired},
	{services.ErrForbidden, http.StatusForbidden, "FORBIDDEN", i18n.KeyAuthForbidden},
	{services.ErrSelfPurchaseForbidden, http.StatusForbidden, "SELF_PURCHASE_FORBIDDEN", i18n.KeySelfPurchaseForbidden},
	{services.ErrPurchaseRequired, http.StatusForbidden, "PURCHASE_REQUIRED", i18n.KeyPurchaseRequired},
	{services.ErrAlreadyOwned, http.StatusConflict, "ALREADY_OWNED", i18n.KeyPurchaseOwned},
	{services.ErrAlreadyReviewed, http.StatusConflict, "ALREADY_REVIEWED", i18n.KeyReviewExists},
	{services.ErrSplitOverAllocated, http.StatusBadRequest, "SPLIT_OVER_ALLOCATED", i18n.KeySplitOverAllocated},
	{services.ErrUnknownCollaborator, http.StatusBadRequest, "UNKNOWN_COLLABORATOR", i18n.KeyUnknownCollaborator},
	{services.ErrInvalidRating, http.StatusBadRequest, "INVALID_RATING", i18n.KeyReviewRating},
	{services.ErrInvalidInput, http.StatusBadRequest, "BAD_REQUEST", i18n.KeyValidationInvalid},
}

// respondError writes the error envelope for a service error. notFoundKey
// names the resource for 404 messages.
func respondError(c *gin.Context, err error, notFoundKey string) {
	lang := utils.GetLangFromContext(c)

	if errors.Is(err, services.ErrNotFound) {
		if notFoundKey == "" {
			notFoundKey = i18n.KeyProductNotFound
		}
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", i18n.T(lang, notFoundKey), nil)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			if m.kind == services.ErrInvalidInput {
				if fields := utils.GetValidationErrors(err); len(fields) > 0 {
					utils.ValidationErrorResponse(c, fields)
					return
				}
				utils.BadRequestResponse(c, "", err.Error())
				return
			}
			utils.ErrorResponse(c, m.status, m.code, i18n.T(lang, m.key), nil)
			return
		}
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("Request failed")
	utils.InternalErrorResponse(c, "")
}

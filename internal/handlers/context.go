// internal/handlers/context.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/snapstudio/marketplace-backend/internal/models"
	"github.com/snapstudio/marketplace-backend/internal/services"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

// currentIdentity returns the caller set by the auth middleware, or an
// anonymous identity.
func currentIdentity(c *gin.Context) services.Identity {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		return services.Identity{}
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return services.Identity{}
	}

	role, _ := utils.GetUserRoleFromContext(c)
	return services.Identity{UserID: userID, Role: models.UserRole(role)}
}

// parseID reads a uuid path parameter, answering 400 when it is malformed.
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes and validates a request body the way every write
// endpoint does.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return false
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

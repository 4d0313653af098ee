// internal/middleware/auth.go
package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"

	"github.com/snapstudio/marketplace-backend/internal/i18n"
	"github.com/snapstudio/marketplace-backend/internal/models"
	"github.com/snapstudio/marketplace-backend/internal/services"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errTokenExpired = errors.New("token expired")
)

// Authenticator verifies identity-provider tokens and makes sure the caller
// has a profile.
type Authenticator struct {
	profiles *services.ProfileService
}

func NewAuthenticator(profiles *services.ProfileService) *Authenticator {
	return &Authenticator{profiles: profiles}
}

func (a *Authenticator) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		profile, err := a.authenticate(c)
		if err != nil {
			switch {
			case errors.Is(err, errMissingToken):
				utils.UnauthorizedResponse(c, "")
			case errors.Is(err, errTokenExpired):
				utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthTokenExpired))
			case errors.Is(err, services.ErrStorageFailure):
				logrus.WithError(err).Error("Failed to sync profile")
				utils.InternalErrorResponse(c, "")
			default:
				utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			}
			c.Abort()
			return
		}

		setProfile(c, profile)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if profile, err := a.authenticate(c); err == nil {
			setProfile(c, profile)
		}
		c.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		role, exists := utils.GetUserRoleFromContext(c)
		if !exists || role != string(models.UserRoleAdmin) {
			utils.ForbiddenResponse(c, "")
			c.Abort()
			return
		}
		c.Next()
	})
}

func (a *Authenticator) authenticate(c *gin.Context) (*models.Profile, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, errMissingToken
	}

	// Extract token from "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("malformed authorization header")
	}

	claims, err := utils.ValidateJWT(parts[1])
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, errTokenExpired
		}
		return nil, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	return a.profiles.EnsureProfile(c.Request.Context(), userID, claims.Email)
}

func setProfile(c *gin.Context, profile *models.Profile) {
	c.Set("user_id", profile.ID.String())
	c.Set("user_role", string(profile.Role))
}

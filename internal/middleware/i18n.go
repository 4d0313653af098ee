// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/snapstudio/marketplace-backend/internal/i18n"
)

func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := defaultLang

		// Handle cases like "zh-CN,zh;q=0.9,en;q=0.8"
		for _, tag := range strings.Split(c.GetHeader("Accept-Language"), ",") {
			if normalized := i18n.Normalize(tag); normalized != "" {
				lang = normalized
				break
			}
		}

		// Set language in context
		c.Set("lang", lang)
		c.Next()
	}
}

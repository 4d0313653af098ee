// internal/router/router.go
package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/snapstudio/marketplace-backend/internal/config"
	"github.com/snapstudio/marketplace-backend/internal/database"
	"github.com/snapstudio/marketplace-backend/internal/handlers"
	"github.com/snapstudio/marketplace-backend/internal/middleware"
	"github.com/snapstudio/marketplace-backend/internal/services"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

const version = "1.0.0"

// Dependencies are the shared clients the router wires into services.
type Dependencies struct {
	DB      *gorm.DB
	Cache   *services.CacheService
	Storage *services.StorageService
}

// Initialize builds the HTTP engine. Background workers stop when ctx is
// done.
func Initialize(ctx context.Context, deps Dependencies, cfg *config.Config) *gin.Engine {
	db := deps.DB

	// Initialize services
	profileService := services.NewProfileService(db)
	productService := services.NewProductService(db, profileService)
	settlementService := services.NewSettlementService(db)
	ratingService := services.NewRatingService(db, deps.Cache)
	reviewService := services.NewReviewService(db, ratingService)
	moderationService := services.NewModerationService(db, deps.Cache)
	paymentService := services.NewPaymentService(db, deps.Storage)
	adminService := services.NewAdminService(db)
	blogService := services.NewBlogService(db, deps.Cache)
	homepageService := services.NewHomepageService(db, deps.Cache)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(profileService, productService)
	productHandler := handlers.NewProductHandler(productService, moderationService, reviewService)
	paymentHandler := handlers.NewPaymentHandler(settlementService, paymentService)
	blogHandler := handlers.NewBlogHandler(blogService, homepageService)
	adminHandler := handlers.NewAdminHandler(adminService, moderationService, homepageService)

	// Token verification
	utils.SetJWTSecret(cfg.Auth.TokenSecret)
	utils.SetJWTIssuer(cfg.Auth.Issuer)
	auth := middleware.NewAuthenticator(profileService)

	generalLimiter := middleware.GeneralRateLimiter(cfg.RateLimit)
	writeLimiter := middleware.WriteRateLimiter(cfg.RateLimit)
	reviewLimiter := middleware.ReviewRateLimiter(cfg.RateLimit)
	go generalLimiter.Run(ctx)
	go writeLimiter.Run(ctx)
	go reviewLimiter.Run(ctx)
	writeLimit := writeLimiter.Middleware()

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestContext())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(generalLimiter.Middleware())

	// Health check
	r.GET("/health", healthHandler(deps))

	// API v1 routes
	v1 := r.Group("/v1")
	{
		v1.GET("/homepage", blogHandler.GetHomepage)

		// Current user routes
		me := v1.Group("/me")
		me.Use(auth.AuthRequired())
		{
			me.GET("", userHandler.GetMe)
			me.PUT("", userHandler.UpdateMe)
			me.GET("/dashboard", paymentHandler.GetDashboard)
			me.GET("/products", userHandler.GetMyProducts)
			me.GET("/purchases", paymentHandler.GetPurchases)
			me.GET("/earnings", paymentHandler.GetEarnings)
		}

		// Product routes
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", auth.OptionalAuth(), productHandler.GetProduct)
			products.GET("/:id/reviews", auth.OptionalAuth(), productHandler.GetProductReviews)

			// Authenticated routes
			protected := products.Group("")
			protected.Use(auth.AuthRequired())
			{
				protected.POST("", writeLimit, productHandler.CreateProduct)
				protected.DELETE("/:id", productHandler.DeleteProduct)
				protected.POST("/:id/purchase", writeLimit, paymentHandler.PurchaseProduct)
				protected.POST("/:id/reviews", reviewLimiter.Middleware(), productHandler.CreateReview)
				protected.GET("/:id/download", paymentHandler.DownloadProduct)
			}
		}

		// Blog routes
		posts := v1.Group("/posts")
		posts.Use(auth.OptionalAuth())
		{
			posts.GET("", blogHandler.GetPosts)
			posts.GET("/:slug", blogHandler.GetPost)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(auth.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
			admin.PUT("/homepage", adminHandler.UpdateHomepage)

			// Product moderation
			adminProducts := admin.Group("/products")
			{
				adminProducts.GET("", adminHandler.GetProducts)
				adminProducts.PUT("/:id/approve", adminHandler.ApproveProduct)
				adminProducts.PUT("/:id/reject", adminHandler.RejectProduct)
				adminProducts.DELETE("/:id", adminHandler.DeleteProduct)
			}

			// Blog management
			adminPosts := admin.Group("/posts")
			{
				adminPosts.GET("", blogHandler.GetPosts)
				adminPosts.POST("", blogHandler.CreatePost)
				adminPosts.PUT("/:id", blogHandler.UpdatePost)
				adminPosts.PUT("/:id/publish", blogHandler.TogglePost)
				adminPosts.DELETE("/:id", blogHandler.DeletePost)
			}
		}
	}

	return r
}

func healthHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		checks := gin.H{"database": "ok", "cache": "disabled"}

		if err := database.Ping(c.Request.Context(), deps.DB); err != nil {
			logrus.WithError(err).Error("Health check: database unreachable")
			status = http.StatusServiceUnavailable
			checks["database"] = "unavailable"
		}

		if deps.Cache.Enabled() {
			checks["cache"] = "ok"
			if err := deps.Cache.Ping(c.Request.Context()); err != nil {
				// cache failures degrade to misses
				logrus.WithError(err).Warn("Health check: cache unreachable")
				checks["cache"] = "unavailable"
			}
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":  state,
			"version": version,
			"checks":  checks,
		})
	}
}

// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/authentrace/provenance-backend/internal/cache"
	"github.com/authentrace/provenance-backend/internal/config"
	"github.com/authentrace/provenance-backend/internal/handlers"
	"github.com/authentrace/provenance-backend/internal/ledger"
	"github.com/authentrace/provenance-backend/internal/middleware"
	"github.com/authentrace/provenance-backend/internal/services"
	"github.com/authentrace/provenance-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config, revoker *cache.TokenRevoker) *gin.Engine {
	// Ledger core
	store := ledger.NewGormStore(db)
	guard := ledger.NewGuard(store, store, store)
	resolver := ledger.NewResolver(store)

	// Services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)
	authService := services.NewAuthService(db, cfg, revoker, notificationService)
	itemService := services.NewItemService(guard, resolver, store, store, storageService, notificationService, cfg)
	adminService := services.NewAdminService(db, guard, notificationService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	itemHandler := handlers.NewItemHandler(itemService, store)
	verificationHandler := handlers.NewVerificationHandler(itemService)
	adminHandler := handlers.NewAdminHandler(adminService, store)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", middleware.AuthRequired(revoker), authHandler.Logout)
			auth.GET("/me", middleware.AuthRequired(revoker), authHandler.GetProfile)
		}

		// Item routes
		items := v1.Group("/items")
		{
			items.GET("/:itemId/history", middleware.OptionalAuth(revoker), itemHandler.History)
			items.GET("/:itemId/qr", middleware.OptionalAuth(revoker), itemHandler.QRPayload)

			protected := items.Group("")
			protected.Use(middleware.AuthRequired(revoker))
			{
				protected.POST("", middleware.ManufacturerRequired(), itemHandler.Mint)
				protected.GET("/owned", itemHandler.Owned)
				protected.POST("/:itemId/transfer", itemHandler.Transfer)
				protected.POST("/:itemId/certificate", middleware.UploadRateLimit(), itemHandler.AttachCertificate)
			}
		}

		// Public verification (QR scan target)
		verify := v1.Group("/verify")
		{
			verify.GET("/:itemId", verificationHandler.VerifyItem)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(revoker), middleware.AdminRequired())
		{
			dashboard := admin.Group("/dashboard")
			{
				dashboard.GET("/stats", adminHandler.GetDashboardStats)
			}

			adminUsers := admin.Group("/users")
			{
				adminUsers.GET("", adminHandler.GetUsers)
				adminUsers.PUT("/:id/status", adminHandler.UpdateUserStatus)
			}

			adminManufacturers := admin.Group("/manufacturers")
			{
				adminManufacturers.POST("/:id/verify", adminHandler.VerifyManufacturer)
			}

			adminItems := admin.Group("/items")
			{
				adminItems.POST("/:itemId/force-transfer", adminHandler.ForceTransfer)
			}

			adminAudit := admin.Group("/audit-logs")
			{
				adminAudit.GET("", adminHandler.GetAuditLogs)
			}

			adminNotifications := admin.Group("/notifications")
			{
				adminNotifications.GET("", adminHandler.GetNotifications)
				adminNotifications.PUT("/:id/read", adminHandler.MarkNotificationRead)
			}
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}

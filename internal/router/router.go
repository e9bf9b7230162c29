// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/exetool/store-backend/internal/cms"
	"github.com/exetool/store-backend/internal/config"
	"github.com/exetool/store-backend/internal/gateway"
	"github.com/exetool/store-backend/internal/handlers"
	"github.com/exetool/store-backend/internal/middleware"
	"github.com/exetool/store-backend/internal/realtime"
	"github.com/exetool/store-backend/internal/services"
	"github.com/exetool/store-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config, hub *realtime.Hub) *gin.Engine {
	// Shared clients
	cmsClient := cms.NewClient(cfg.CMS)
	gatewayClient := gateway.NewClient(cfg.Gateway)

	// Services
	notificationService := services.NewNotificationService(cfg)
	auditService := services.NewAuditService(db)
	storageService, err := services.NewStorageService(cmsClient, cfg)
	if err != nil {
		logrus.WithError(err).Warn("S3 fallback unavailable, uploads use CMS only")
	}

	couponService := services.NewCouponService(db)
	checkoutService := services.NewCheckoutService(couponService, gatewayClient, cfg.Gateway)
	fulfillmentService := services.NewFulfillmentService(
		services.NewFulfillmentStore(db), cfg.Gateway.KeySecret, notificationService, auditService)
	licenseService := services.NewLicenseService(db)
	orderService := services.NewOrderService(db)
	reviewService := services.NewReviewService(db, licenseService, cfg.Reviews.AutoApprove)
	contentService := services.NewContentService(cmsClient)
	contactService := services.NewContactService(db, notificationService)
	adminService := services.NewAdminService(db, cfg)

	// Handlers
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, fulfillmentService)
	couponHandler := handlers.NewCouponHandler(couponService, auditService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	contactHandler := handlers.NewContactHandler(contactService)
	contentHandler := handlers.NewContentHandler(cmsClient, contentService, storageService)
	adminHandler := handlers.NewAdminHandler(adminService, orderService, auditService)
	licenseHandler := handlers.NewLicenseHandler(licenseService, auditService)
	accountHandler := handlers.NewAccountHandler(orderService, licenseService)
	realtimeHandler := handlers.NewRealtimeHandler(hub)

	// JWT secrets for session and access token validation
	utils.SetJWTSecrets(cfg.JWT.SecretKey, cfg.JWT.AuthSecret)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	api := r.Group("/api")
	{
		// Storefront catalog
		api.GET("/products", contentHandler.ListProducts)
		api.GET("/products/:slug", contentHandler.GetProductBySlug)
		api.GET("/posts", contentHandler.ListPosts)
		api.GET("/settings", contentHandler.GetSiteSettings)
		api.GET("/links", contentHandler.ListStoredLinks)

		// Coupons
		api.POST("/coupons/validate", couponHandler.Validate)

		// Checkout and fulfillment
		checkout := api.Group("/checkout")
		checkout.Use(middleware.CheckoutRateLimit())
		{
			checkout.POST("", checkoutHandler.CreateOrderIntent)
			checkout.POST("/custom", checkoutHandler.CreateCustomOrderIntent)
			checkout.POST("/verify", checkoutHandler.VerifyPayment)
		}

		// Reviews
		api.GET("/reviews", reviewHandler.ListByProduct)
		api.POST("/reviews", reviewHandler.Submit)

		// Contact form
		api.POST("/contact", contactHandler.Submit)

		// Shopper's own purchase data
		api.GET("/orders", middleware.UserAuthRequired(), accountHandler.MyOrders)
		api.GET("/licenses", middleware.UserAuthRequired(), accountHandler.MyLicenses)

		// Realtime change feed
		api.GET("/realtime", realtimeHandler.Stream)

		// Admin console
		api.POST("/admin/login", middleware.LoginRateLimit(), adminHandler.Login)

		admin := api.Group("/admin")
		admin.Use(middleware.AdminRequired())
		{
			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/logs", adminHandler.ListLogs)

			admin.GET("/licenses", licenseHandler.List)
			admin.POST("/licenses", licenseHandler.Issue)
			admin.DELETE("/licenses", licenseHandler.Revoke)

			admin.GET("/coupons", couponHandler.List)
			admin.POST("/coupons", couponHandler.Create)
			admin.PATCH("/coupons/:id", couponHandler.Update)
			admin.DELETE("/coupons/:id", couponHandler.Delete)

			admin.PATCH("/reviews/:id", reviewHandler.Moderate)

			admin.GET("/content", contentHandler.AdminList)
			admin.POST("/content", contentHandler.AdminCreate)
			admin.PATCH("/content", contentHandler.AdminPatch)
			admin.DELETE("/content", contentHandler.AdminDelete)

			admin.POST("/uploads", middleware.UploadRateLimit(), contentHandler.Upload)
		}
	}

	return r
}

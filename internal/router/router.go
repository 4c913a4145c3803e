// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shelfshare/booklend-backend/internal/config"
	"github.com/shelfshare/booklend-backend/internal/handlers"
	"github.com/shelfshare/booklend-backend/internal/identity"
	"github.com/shelfshare/booklend-backend/internal/middleware"
	"github.com/shelfshare/booklend-backend/internal/services"
	"github.com/shelfshare/booklend-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	sessions := identity.NewBroadcaster()
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage service")
	}

	authService := services.NewAuthService(db, cfg, sessions)
	bookService := services.NewBookService(db)
	borrowService := services.NewBorrowService(db, cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	bookHandler := handlers.NewBookHandler(bookService, storageService)
	borrowHandler := handlers.NewBorrowHandler(borrowService)

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
	r.Use(middleware.Metrics())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", middleware.MetricsHandler())

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
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Book routes
		books := v1.Group("/books")
		{
			books.GET("", middleware.OptionalAuth(), bookHandler.GetBooks)

			// Authenticated routes
			protected := books.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.GET("/mine", bookHandler.GetMyBooks)
				protected.POST("", bookHandler.CreateBook)
				protected.DELETE("/:id", bookHandler.DeleteBook)
				protected.POST("/:id/cover", middleware.UploadRateLimit(), bookHandler.UploadCover)
			}

			books.GET("/:id", middleware.OptionalAuth(), bookHandler.GetBook)
		}

		// Borrow request routes
		requests := v1.Group("/borrow-requests")
		requests.Use(middleware.AuthRequired())
		{
			requests.POST("", borrowHandler.CreateRequest)
			requests.GET("/outgoing", borrowHandler.GetOutgoingRequests)
			requests.GET("/incoming", borrowHandler.GetIncomingRequests)
			requests.POST("/:id/approve", borrowHandler.ApproveRequest)
			requests.POST("/:id/reject", borrowHandler.RejectRequest)
			requests.POST("/:id/cancel", borrowHandler.CancelRequest)
			requests.POST("/:id/return", borrowHandler.MarkReturned)
		}
	}

	return r
}

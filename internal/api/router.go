package api

import (
	"context"
	"net/http"
	"time"

	"github.com/catalog-admin-api/internal/config"
	"github.com/catalog-admin-api/internal/repository"
	"github.com/catalog-admin-api/internal/service"
	"github.com/catalog-admin-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HealthChecker reports backing-store health for the health endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router
func NewRouter(repos *repository.Repositories, services *service.Services, cfg *config.Config, files storage.FileStore, health HealthChecker, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	authHandler := NewAuthHandler(repos, cfg, log)
	userHandler := NewUserHandler(repos, log)
	categoryHandler := NewCategoryHandler(repos, log)
	productHandler := NewProductHandler(repos, services, cfg, files, log)
	reportHandler := NewReportHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(health))

	// Uploaded product images
	router.Static("/uploads", cfg.Import.UploadDir)

	// API v1
	v1 := router.Group("/v1")
	{
		// Auth endpoints (no token required)
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}

		// Authenticated endpoints
		secured := v1.Group("")
		secured.Use(authMiddleware(cfg.Auth.JWTSecret))
		{
			secured.GET("/auth/me", authHandler.Me)
			secured.PUT("/auth/me", authHandler.UpdateMe)
			secured.POST("/auth/change-password", authHandler.ChangePassword)

			categories := secured.Group("/categories")
			{
				categories.GET("", categoryHandler.List)
				categories.GET("/:id", categoryHandler.Get)
				categories.POST("", categoryHandler.Create)
				categories.PUT("/:id", categoryHandler.Update)
				categories.DELETE("/:id", categoryHandler.Delete)
			}

			products := secured.Group("/products")
			{
				products.GET("", productHandler.List)
				products.POST("", productHandler.Create)

				// Bulk import must be registered before /:id so the
				// literal segment wins.
				products.POST("/bulk", productHandler.BulkImport)
				products.GET("/bulk/:job_id", productHandler.BulkImportStatus)
				products.GET("/bulk/:job_id/errors", productHandler.BulkImportErrors)

				products.GET("/:id", productHandler.Get)
				products.PUT("/:id", productHandler.Update)
				products.DELETE("/:id", productHandler.Delete)
			}

			reports := secured.Group("/reports")
			{
				reports.GET("/products", reportHandler.Products)
				reports.GET("/template", reportHandler.Template)
			}

			// User administration (admin only)
			users := secured.Group("/users")
			users.Use(requireRole("admin"))
			{
				users.GET("", userHandler.List)
				users.POST("", userHandler.Create)
				users.GET("/:id", userHandler.Get)
				users.PUT("/:id", userHandler.Update)
				users.DELETE("/:id", userHandler.Delete)
			}
		}
	}

	return router
}

// healthCheck returns the health status including database reachability
func healthCheck(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "healthy"
		status := http.StatusOK
		if health != nil {
			if err := health.HealthCheck(c.Request.Context()); err != nil {
				dbStatus = "unreachable"
				status = http.StatusServiceUnavailable
			}
		}

		c.JSON(status, gin.H{
			"status":    dbStatus,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "catalog-admin-api",
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

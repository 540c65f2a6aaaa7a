package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bgpiesa-backend/internal/config"
	"bgpiesa-backend/internal/infrastructure/storage"
	"bgpiesa-backend/internal/shared/middleware"
	"bgpiesa-backend/internal/shared/response"
	"bgpiesa-backend/pkg/cache"
	"bgpiesa-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.CORS.AllowedOrigins),
	)

	router.Static(c.Config.Media.URLPrefix, c.Config.Media.Root)
	if c.MemoryStore != nil {
		router.GET(config.MemoryStorePath+"/*key", memoryObjectHandler(c.MemoryStore))
	}

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(c.Config.App, c.DB, c.Cache))

		setupAuthorRoutes(api, c)
		setupPlayRoutes(api, c)
		setupLibraryRoutes(api, c)
		setupAdminRoutes(api, c)
	}

	return router
}

// ========================================
// PUBLIC ROUTES
// ========================================
func setupAuthorRoutes(api *gin.RouterGroup, c *container.Container) {
	authors := api.Group("/authors")
	{
		authors.GET("", c.AuthorHandler.List)
		authors.GET("/:id", c.AuthorHandler.GetDetail)
	}
}

func setupPlayRoutes(api *gin.RouterGroup, c *container.Container) {
	plays := api.Group("/plays")
	{
		plays.GET("", c.PlayHandler.List)
		plays.GET("/:id", c.PlayHandler.GetDetail)
		plays.GET("/:id/download-pdf", c.PlayHandler.DownloadPDF)
		plays.GET("/:id/files/:fileId/view", c.PlayHandler.ViewFile)
	}
}

func setupLibraryRoutes(api *gin.RouterGroup, c *container.Container) {
	library := api.Group("/library")
	{
		library.GET("", c.LibraryHandler.List)
		library.GET("/:id", c.LibraryHandler.Get)
		library.GET("/:id/download-pdf", c.LibraryHandler.DownloadPDF)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(api *gin.RouterGroup, c *container.Container) {
	admin := api.Group("/admin")
	admin.POST("/login", c.AdminHandler.Login)

	protected := admin.Group("")
	protected.Use(
		middleware.AdminRequired(c.JWTManager),
		middleware.BodyLimit(c.Config.Storage.MaxUploadBytes),
		middleware.CacheInvalidation(c.Cache),
	)

	authors := protected.Group("/authors")
	{
		authors.POST("", c.AuthorHandler.Create)
		authors.PUT("/:id", c.AuthorHandler.Update)
		authors.DELETE("/:id", c.AuthorHandler.Delete)
		authors.POST("/:id/upload-photo", c.AuthorHandler.UploadPhoto)
	}

	plays := protected.Group("/plays")
	{
		plays.POST("", c.PlayHandler.Create)
		plays.PUT("/:id", c.PlayHandler.Update)
		plays.DELETE("/:id", c.PlayHandler.Delete)
		plays.POST("/:id/upload-pdf", c.PlayHandler.UploadPDF)
		plays.POST("/:id/upload-image", c.PlayHandler.UploadImage)
		plays.POST("/:id/upload-file", c.PlayHandler.UploadFile)
		plays.PATCH("/:id/images/:imageId", c.PlayHandler.UpdateImage)
		plays.DELETE("/:id/images/:imageId", c.PlayHandler.DeleteImage)
		plays.PATCH("/:id/files/:fileId", c.PlayHandler.UpdateFile)
		plays.DELETE("/:id/files/:fileId", c.PlayHandler.DeleteFile)
	}

	library := protected.Group("/library")
	{
		library.POST("", c.LibraryHandler.Create)
		library.PUT("/:id", c.LibraryHandler.Update)
		library.DELETE("/:id", c.LibraryHandler.Delete)
		library.POST("/:id/upload-pdf", c.LibraryHandler.UploadPDF)
	}
}

// ========================================
// HEALTH CHECK
// ========================================

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

func healthCheckHandler(app config.AppConfig, db healthChecker, readCache cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		dbStatus := "ok"
		if db == nil {
			dbStatus = "disconnected"
			status = "degraded"
		} else if err := db.HealthCheck(ctx); err != nil {
			dbStatus = "error"
			status = "degraded"
		}

		cacheStatus := "disabled"
		if readCache != nil {
			if _, noop := readCache.(cache.Noop); !noop {
				cacheStatus = "ok"
				if err := readCache.Ping(ctx); err != nil {
					cacheStatus = "error"
				}
			}
		}

		code := http.StatusOK
		if status != "ok" {
			code = http.StatusServiceUnavailable
		}

		response.Success(c, code, gin.H{
			"status":    status,
			"app":       app.Name,
			"version":   app.Version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services": gin.H{
				"database": dbStatus,
				"cache":    cacheStatus,
			},
		})
	}
}

// memoryObjectHandler serves objects of the in-memory store under /store
func memoryObjectHandler(store *storage.MemoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")

		data, contentType, ok := store.Object(key)
		if !ok {
			response.NotFound(c, "Файлът липсва.")
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

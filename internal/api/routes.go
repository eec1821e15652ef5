package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cvstudio/internal/api/middleware"
	"cvstudio/internal/auth"
	"cvstudio/internal/config"
	"cvstudio/internal/layout"
	"cvstudio/internal/storage"
)

// RegisterRoutes registers the API routes without an /api prefix.
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	asynqClient *asynq.Client,
	authService *auth.Service,
	redisClient *redis.Client,
	logger *slog.Logger,
	storageClient *storage.Client,
	engine *layout.Engine,
	uploadCfg config.UploadConfig,
) {
	cvHandler := NewCvHandler(db, asynqClient, storageClient, engine, logger)
	profileHandler := NewProfileHandler(db)
	resumeHandler := NewResumeHandler(db, storageClient, logger, uploadCfg.ClamdAddr, uploadCfg.MaxBytes)
	authHandler := NewAuthHandler(db, authService, redisClient, logger)
	wsHandler := NewWsHandler(redisClient, authService, logger, nil)
	authMiddleware := middleware.AuthMiddleware(authService)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
		}

		profileGroup := v1.Group("/profile")
		profileGroup.Use(authMiddleware)
		{
			profileGroup.GET("", profileHandler.GetProfile)
			profileGroup.PUT("", profileHandler.UpdateProfile)
		}

		cvGroup := v1.Group("/cv")
		cvGroup.Use(authMiddleware)
		{
			cvGroup.GET("", cvHandler.GetDocument)
			cvGroup.PUT("", cvHandler.PutDocument)
			cvGroup.POST("/sections/:id/enable", cvHandler.EnableSection)
			cvGroup.POST("/sections/:id/disable", cvHandler.DisableSection)
			cvGroup.POST("/sections/:id/reorder", cvHandler.ReorderSection)
			cvGroup.POST("/entries/:kind", cvHandler.AddEntry)
			cvGroup.DELETE("/entries/:kind/:index", cvHandler.RemoveEntry)
			cvGroup.POST("/validate", cvHandler.Validate)
			cvGroup.GET("/export", cvHandler.Export)
			cvGroup.POST("/save", cvHandler.Save)
			cvGroup.GET("/preview", cvHandler.Preview)
			cvGroup.GET("/download-link", cvHandler.GetDownloadLink)
		}

		resumeGroup := v1.Group("/resume")
		resumeGroup.Use(authMiddleware)
		{
			resumeGroup.POST("/upload", resumeHandler.Upload)
			resumeGroup.GET("/download-link", resumeHandler.GetDownloadLink)
			resumeGroup.DELETE("", resumeHandler.Delete)
		}
	}
}

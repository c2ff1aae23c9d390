package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	feedHTTP "postcard/internal/controller/http"
	"postcard/internal/usecase"
	"postcard/pkg/config"
	"postcard/pkg/contentapi"
	"postcard/pkg/jwt"
	"postcard/pkg/logger"
	"postcard/pkg/middleware"
	"postcard/pkg/s3"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "postcard/docs" // Swagger docs
)

func Run(cfg *config.Config, log *logger.Logger, s3Client *s3.Client, apiClient *contentapi.Client, redisClient *redis.Client) {
	jwtService := jwt.NewService(cfg.JWTSecret)

	// Initialize use cases
	ingestor := usecase.NewMediaIngestor(s3Client, log)
	feed := usecase.NewFeedUseCase(apiClient, log)

	// Initialize HTTP handlers
	composerHandler := feedHTTP.NewComposerHandler(ingestor, feed, apiClient, log)
	feedHandler := feedHTTP.NewFeedHandler(feed, log)

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	api.Use(middleware.RateLimitMiddleware(redisClient, 100, time.Minute))

	{
		api.POST("/posts", composerHandler.CreatePost)
		api.GET("/posts", feedHandler.ListPosts)
		api.PATCH("/posts/:id", feedHandler.UpdatePost)
		api.DELETE("/posts/:id", feedHandler.DeletePost)
		api.POST("/posts/:id/edit", feedHandler.BeginEdit)
		api.POST("/posts/:id/edit/cancel", feedHandler.CancelEdit)
		api.POST("/posts/:id/display-mode", feedHandler.SelectDisplayMode)
		api.POST("/posts/:id/advance", feedHandler.Advance)
		api.POST("/posts/:id/menu", feedHandler.OpenMenu)
		api.POST("/side-panel", feedHandler.ToggleSidePanel)
		api.POST("/dismiss", feedHandler.Dismiss)
		api.POST("/profile/avatar", composerHandler.UploadAvatar)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Postcard service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down postcard service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Close Redis connection
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis: %v", err)
		}
	}

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
		panic(err)
	}

	log.Info("Postcard service exited")
}

package main

import (
	"context"

	"postcard/internal/app"
	"postcard/pkg/config"
	"postcard/pkg/contentapi"
	"postcard/pkg/logger"
	"postcard/pkg/s3"

	"github.com/redis/go-redis/v9"
)

// @title           Postcard API
// @version         1.0
// @description     Media ingestion and feed service for the Postcard platform

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "your-secret-key-change-in-production" || cfg.JWTSecret == "" {
		panic("JWT_SECRET must be set in environment variables")
	}

	log := logger.New()

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		panic(err)
	}

	apiClient := contentapi.New(cfg.ContentAPIURL)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisHost + ":" + cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Warn("Redis unavailable, rate limiting disabled: %v", err)
		redisClient = nil
	}

	app.Run(cfg, log, s3Client, apiClient, redisClient)
}

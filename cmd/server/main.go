package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"ecoride/internal/config"
	handlers "ecoride/internal/handlers/shared"
	"ecoride/internal/middleware"
	"ecoride/internal/repositories/mongodb"
	"ecoride/internal/repositories/postgres"
	"ecoride/internal/services"
	"ecoride/pkg/cache"
	"ecoride/pkg/database"
	"ecoride/pkg/logger"
	"ecoride/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Relational store for rides and bookings
	pg, err := database.NewPostgres(&database.PostgresConfig{
		DSN:             cfg.Postgres.DSN(),
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		ConnectTimeout:  cfg.Postgres.ConnectTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pg.Close()

	// Document store for reviews
	mongo, err := database.NewMongoDB(&database.MongoConfig{
		URI:            cfg.MongoDB.URI,
		Database:       cfg.MongoDB.Database,
		MaxPoolSize:    cfg.MongoDB.MaxPoolSize,
		MinPoolSize:    cfg.MongoDB.MinPoolSize,
		ConnectTimeout: cfg.MongoDB.ConnectTimeout,
		SocketTimeout:  cfg.MongoDB.SocketTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to mongodb: %v", err)
	}
	defer mongo.Close()

	if err := mongodb.EnsureReviewIndexes(context.Background(), mongo.Database); err != nil {
		appLogger.Fatalf("Failed to create review indexes: %v", err)
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:            cfg.Redis.Host,
		Port:            cfg.Redis.Port,
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		ConnMaxIdleTime: cfg.Redis.ConnMaxIdleTime,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisCache.Close()

	// Repositories
	cacheService := services.NewCacheService(redisCache, appLogger)
	rideRepo := postgres.NewRideRepository(pg.DB)
	userRepo := postgres.NewUserRepository(pg.DB)
	locationRepo := postgres.NewLocationRepository(pg.DB)
	vehicleRepo := postgres.NewVehicleRepository(pg.DB)
	reviewRepo := mongodb.NewReviewRepository(mongo.Database, redisCache)

	// Services
	rideService := services.NewRideService(rideRepo, locationRepo, vehicleRepo, reviewRepo, cacheService, appLogger)
	reviewService := services.NewReviewService(reviewRepo, rideRepo, userRepo, appLogger)

	// Handlers
	rideHandler := handlers.NewRideHandler(rideService, userRepo)
	reviewHandler := handlers.NewReviewHandler(reviewService, userRepo)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))

	// API routes
	v1 := router.Group("/api/v1")
	{
		routes.SetupRideRoutes(v1, rideHandler, cfg.Security.JWTSecret)
		routes.SetupReviewRoutes(v1, reviewHandler, cfg.Security.JWTSecret)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK

		checks := map[string]string{
			"postgres": "up",
			"mongodb":  "up",
			"redis":    "up",
		}

		if err := pg.Ping(); err != nil {
			checks["postgres"] = "down"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		if err := mongo.Ping(); err != nil {
			checks["mongodb"] = "down"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		if err := cacheService.Ping(c.Request.Context()); err != nil {
			checks["redis"] = "down"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":  status,
			"version": cfg.App.Version,
			"checks":  checks,
		})
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	appLogger.WithField("addr", addr).Info("Starting server")
	if err := router.Run(addr); err != nil {
		appLogger.Fatalf("Server stopped: %v", err)
	}
}

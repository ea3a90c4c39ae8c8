package main

import (
	"context"                     // context package is needed for Redis operations
	"landify/internal/api"        // Custom package for API handlers
	"landify/internal/config"     // Custom package for configuration
	"landify/internal/middleware" // Custom package for middleware
	"landify/internal/storage"    // Custom package for object storage
	"log"                         // log package is needed for logging
	"net/http"                    // Identity provider HTTP client
	"time"                        // Provider client timeout

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	// TranslateError surfaces duplicate-key and FK violations as gorm errors
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Setup object storage for listing images
	store, err := storage.New(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioPublicURL, cfg.MinioUseSSL)
	if err != nil {
		logrus.Fatalf("failed to connect to object storage: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// HTTP client for identity provider calls, passed into the handlers
	identityClient := &http.Client{Timeout: 10 * time.Second}

	// Auth routes (proxied to the identity provider)
	r.POST("/auth/register", api.RegisterHandler(db, identityClient, cfg.IdentityURL)) // Registration endpoint
	r.POST("/auth/login", api.LoginHandler(identityClient, cfg.IdentityURL))           // Login endpoint

	// User lookup (any authenticated caller)
	r.GET("/user/:id", middleware.AuthMiddleware(db, redisClient, cfg.JWTSecret), api.GetUserHandler(db)) // Get user endpoint

	// Listing routes; reads are viewer-aware but open to anonymous requests
	listingGroup := r.Group("/listing")
	listingGroup.GET("/get", middleware.OptionalAuthMiddleware(db, redisClient, cfg.JWTSecret), api.GetListingsHandler(db))    // Paginated/filtered search
	listingGroup.GET("/get/:id", middleware.OptionalAuthMiddleware(db, redisClient, cfg.JWTSecret), api.GetListingHandler(db)) // Single listing
	// Writes require an admin
	listingAdmin := listingGroup.Group("")
	listingAdmin.Use(middleware.AuthMiddleware(db, redisClient, cfg.JWTSecret), middleware.AdminOnlyMiddleware(db))
	listingAdmin.POST("/create", api.CreateListingHandler(db))              // Create listing endpoint
	listingAdmin.PUT("/update/:id", api.UpdateListingHandler(db))           // Update listing endpoint
	listingAdmin.DELETE("/delete/:id", api.DeleteListingHandler(db, store)) // Delete one listing endpoint
	listingAdmin.DELETE("/delete", api.DeleteListingsHandler(db, store))    // Bulk delete endpoint

	// Favorite routes (authenticated users)
	favoriteGroup := r.Group("/favorite")
	favoriteGroup.Use(middleware.AuthMiddleware(db, redisClient, cfg.JWTSecret))
	favoriteGroup.POST("/add/:id", api.AddFavoriteHandler(db))                                          // Add favorite endpoint
	favoriteGroup.DELETE("/delete/:id", api.RemoveFavoriteHandler(db))                                  // Remove favorite endpoint
	favoriteGroup.GET("/get", api.GetFavoritesHandler(db))                                              // Paginated favorites endpoint
	favoriteGroup.DELETE("/delete", middleware.AdminOnlyMiddleware(db), api.DeleteFavoritesHandler(db)) // Admin bulk delete endpoint

	// Image routes (admin only)
	imageGroup := r.Group("/image")
	imageGroup.Use(middleware.AuthMiddleware(db, redisClient, cfg.JWTSecret), middleware.AdminOnlyMiddleware(db))
	imageGroup.POST("/uploads/:id", api.UploadImagesHandler(db, store))     // Attach images endpoint
	imageGroup.DELETE("/remove_images", api.RemoveImagesHandler(db, store)) // Detach images endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}

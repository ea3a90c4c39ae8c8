package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort        string // Application port
	DBUser         string // Database user
	DBPassword     string // Database password
	DBHost         string // Database host
	DBPort         string // Database port
	DBName         string // Database name
	IdentityURL    string // Identity provider base URL (register/login proxy)
	JWTSecret      string // Shared HS256 secret the identity provider signs tokens with
	RedisAddr      string // Redis server address
	RedisPass      string // Redis password
	RedisDB        int    // Redis database number
	MinioEndpoint  string // Object storage endpoint
	MinioAccessKey string // Object storage access key
	MinioSecretKey string // Object storage secret key
	MinioBucket    string // Bucket holding listing images
	MinioPublicURL string // Base URL under which bucket objects are publicly served
	MinioUseSSL    bool   // Whether to talk to object storage over TLS
	IsProd         bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:        os.Getenv("APP_PORT"),                // Application port
		DBUser:         os.Getenv("DB_USER"),                 // Database user
		DBPassword:     os.Getenv("DB_PASSWORD"),             // Database password
		DBHost:         os.Getenv("DB_HOST"),                 // Database host
		DBPort:         os.Getenv("DB_PORT"),                 // Database port
		DBName:         os.Getenv("DB_NAME"),                 // Database name
		IdentityURL:    os.Getenv("IDENTITY_URL"),            // Identity provider base URL
		JWTSecret:      os.Getenv("JWT_SECRET"),              // Token verification secret
		RedisAddr:      os.Getenv("REDIS_ADDR"),              // Redis server address
		RedisPass:      os.Getenv("REDIS_PASS"),              // Redis password
		RedisDB:        redisDB,                              // Redis database number
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),          // Object storage endpoint
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),        // Object storage access key
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),        // Object storage secret key
		MinioBucket:    os.Getenv("MINIO_BUCKET"),            // Image bucket name
		MinioPublicURL: os.Getenv("MINIO_PUBLIC_URL"),        // Public base URL for objects
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true", // TLS toggle for object storage
		IsProd:         os.Getenv("IS_PROD") == "true",       // Is production environment
	}
}

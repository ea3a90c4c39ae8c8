package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Cache TTL

	"landify/internal/domain" // Importing domain models
	"landify/internal/utils"  // JWT and cache utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// resolveUser maps a bearer token to the local user row. The token is
// verified against the identity provider's shared secret and its email
// claim looked up locally, with a short-lived redis cache in front.
func resolveUser(c *gin.Context, db *gorm.DB, rdb *redis.Client, secret, tokenStr string) (*domain.User, bool) {
	claims, err := utils.ParseJWT(tokenStr, secret) // Verify the provider token
	if err != nil {
		// If verification fails, abort with unauthorized status
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return nil, false
	}
	ctx := c.Request.Context()
	cacheKey := utils.UserCacheKey(claims.Email) // Cache key for the resolved user
	var user domain.User
	if rdb != nil {
		// Try the cache first; a miss or redis error just falls through to the DB
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &user); err == nil && found {
			return &user, true
		}
	}
	// Map the account email to a local user row
	if err := db.Where("email = ?", claims.Email).First(&user).Error; err != nil {
		// Token is valid but no local account exists for it
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown account"})
		return nil, false
	}
	if rdb != nil {
		_ = utils.SetCache(ctx, rdb, cacheKey, user, 60*time.Second) // Cache the resolved user for 60 seconds
	}
	return &user, true
}

// bearerToken extracts the token from the Authorization header
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization") // Get Authorization header
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false // Missing or malformed header
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

// AuthMiddleware requires a valid token and stores the resolved user in context
func AuthMiddleware(db *gorm.DB, rdb *redis.Client, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		// Check if the Authorization header is present and properly formatted
		if !ok {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		user, ok := resolveUser(c, db, rdb, secret, tokenStr)
		if !ok {
			return // resolveUser already aborted
		}
		c.Set("currentUser", user) // Store resolved user in context
		c.Set("userID", user.ID)   // Store userID in context
		c.Next()                   // Proceed to the next handler
	}
}

// OptionalAuthMiddleware resolves the viewer when a token is present and
// lets anonymous requests straight through. An invalid token is still
// rejected rather than silently treated as anonymous.
func OptionalAuthMiddleware(db *gorm.DB, rdb *redis.Client, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.Next() // No credential, proceed anonymously
			return
		}
		user, ok := resolveUser(c, db, rdb, secret, tokenStr)
		if !ok {
			return // resolveUser already aborted
		}
		c.Set("currentUser", user) // Store resolved user in context
		c.Set("userID", user.ID)   // Store userID in context
		c.Next()
	}
}

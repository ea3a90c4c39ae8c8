package api

import (
	"errors"   // Storage error checks
	"net/http" // HTTP status codes

	"landify/internal/domain" // Importing domain models
	"landify/internal/query"  // Favorites query

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// AddFavoriteHandler bookmarks a listing for the calling user. The pre-check
// yields a clean 409 for duplicates; the composite unique index on
// (user_id, listing_id) is the backstop when two adds race.
func AddFavoriteHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		listingID, ok := pathID(c)
		if !ok {
			// Non-integer id, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
			return
		}
		var listing domain.Listing // The listing must exist before it can be favorited
		if err := db.First(&listing, listingID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		// Check for an existing favorite to produce a clean conflict
		var existing domain.Favorite
		if err := db.Where("user_id = ? AND listing_id = ?", userID, listingID).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Listing already favorited"})
			return
		}
		favorite := domain.Favorite{UserID: userID.(uint), ListingID: &listingID}
		// Attempt to create the favorite
		if err := db.Create(&favorite).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// A concurrent add won the race; the unique index rejected this one
				c.JSON(http.StatusConflict, gin.H{"error": "Listing already favorited"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"user_id":    userID,      // User ID
				"listing_id": listingID,   // Listing ID
				"error":      err.Error(), // Error message
			}).Error("Failed to add favorite") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add favorite"})
			return
		}
		c.JSON(http.StatusCreated, favorite) // Return the created favorite
	}
}

// RemoveFavoriteHandler removes the caller's favorite of a listing
func RemoveFavoriteHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		listingID, ok := pathID(c)
		if !ok {
			// Non-integer id, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
			return
		}
		// Delete the (user, listing) favorite if it exists
		res := db.Where("user_id = ? AND listing_id = ?", userID, listingID).Delete(&domain.Favorite{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove favorite"})
			return
		}
		if res.RowsAffected == 0 {
			// Nothing to remove for this pair
			c.JSON(http.StatusNotFound, gin.H{"error": "Favorite not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Favorite removed"})
	}
}

// GetFavoritesHandler returns the caller's paginated favorites, searchable
// over the bookmarked listings' text fields
func GetFavoritesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		values := c.Request.URL.Query()
		page, limit, err := query.ParsePagination(values)
		if err != nil {
			// Non-positive page/limit is invalid input
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		q := query.FavoriteQuery{
			UserID: userID.(uint),        // Only the caller's favorites
			Page:   page,                 // Current page
			Limit:  limit,                // Page size
			Search: values.Get("search"), // Optional search term
		}
		result, err := q.Run(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch favorites"})
			return
		}
		c.JSON(http.StatusOK, result) // Return the pagination envelope
	}
}

// Request struct for bulk favorite deletion
type DeleteFavoritesRequest struct {
	IdsToDelete []uint `json:"idsToDelete" binding:"required"` // Favorite ids to delete
}

// DeleteFavoritesHandler removes several favorites by id list (admin)
func DeleteFavoritesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DeleteFavoritesRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || len(req.IdsToDelete) == 0 {
			// Must be a non-empty array of integers
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID list. Must be an array of integers."})
			return
		}
		res := db.Where("id IN ?", req.IdsToDelete).Delete(&domain.Favorite{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": res.RowsAffected}) // Return the deletion count
	}
}

package api

import (
	"errors"   // Storage error checks
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // Enum normalization

	"landify/internal/domain" // Importing domain models
	"landify/internal/query"  // Listing query engine

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// viewerID returns the authenticated user's id, nil for anonymous requests
func viewerID(c *gin.Context) *uint {
	if v, exists := c.Get("userID"); exists {
		if id, ok := v.(uint); ok {
			return &id // Authenticated viewer
		}
	}
	return nil // Anonymous viewer, favorite flags stay omitted
}

// pathID parses the :id path param as a positive integer
func pathID(c *gin.Context) (uint, bool) {
	v, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false // Not an integer id
	}
	return uint(v), true
}

// GetListingsHandler runs the filtered/searched/paginated listing query,
// viewer-aware when the optional auth middleware resolved a user
func GetListingsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Validate all query parameters at the boundary
		q, err := query.ParseListingQuery(c.Request.URL.Query())
		if err != nil {
			// Malformed input never reaches the data layer
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		q.ViewerID = viewerID(c) // Enables isFavorited when a viewer is present
		page, err := q.Run(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Listing fetch failed"})
			return
		}
		c.JSON(http.StatusOK, page) // Return the pagination envelope
	}
}

// GetListingHandler returns one listing with images, owner, favorite count
// and the viewer's favorite flag
func GetListingHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			// Non-integer id, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
			return
		}
		detail, err := query.GetListingByID(db, id, viewerID(c))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// No listing with this id
				c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Listing fetch failed"})
			return
		}
		c.JSON(http.StatusOK, detail) // Return the listing detail
	}
}

// Request struct for creating a listing
type CreateListingRequest struct {
	Title        string  `json:"title" binding:"required"`        // Listing title
	Address      string  `json:"address" binding:"required"`      // Street address
	PriceCents   *int64  `json:"priceCents" binding:"required"`   // Price in cents; pointer so 0 still binds
	PropertyType string  `json:"propertyType" binding:"required"` // APARTMENT, HOUSE or COMMERCIAL
	Status       string  `json:"status" binding:"required"`       // FOR_SALE or FOR_RENT
	Description  *string `json:"description"`                     // Optional description
}

// CreateListingHandler creates a listing owned by the calling admin
func CreateListingHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateListingRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate the closed enum values and the price invariant
		propertyType := strings.ToUpper(req.PropertyType)
		status := strings.ToUpper(req.Status)
		if !domain.ValidPropertyType(propertyType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "propertyType must be APARTMENT, HOUSE or COMMERCIAL"})
			return
		}
		if !domain.ValidListingStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be FOR_SALE or FOR_RENT"})
			return
		}
		if *req.PriceCents < 0 {
			// Price is a non-negative count of cents
			c.JSON(http.StatusBadRequest, gin.H{"error": "priceCents must be non-negative"})
			return
		}
		ownerID := viewerID(c) // The creating admin owns the listing
		listing := domain.Listing{
			OwnerID:      ownerID,         // Owner reference
			Title:        req.Title,       // Listing title
			Description:  req.Description, // Optional description
			Address:      req.Address,     // Street address
			PriceCents:   *req.PriceCents, // Price in cents
			PropertyType: propertyType,    // Validated property type
			Status:       status,          // Validated status
		}
		// Attempt to create the listing
		if err := db.Create(&listing).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"owner_id": ownerID,     // Owner user ID
				"title":    req.Title,   // Listing title
				"error":    err.Error(), // Error message
			}).Error("Failed to create listing") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
			return
		}
		c.JSON(http.StatusCreated, listing) // Return the created listing
	}
}

// Request struct for updating a listing; all fields optional
type UpdateListingRequest struct {
	Title        *string `json:"title"`        // New title
	Address      *string `json:"address"`      // New address
	PriceCents   *int64  `json:"priceCents"`   // New price in cents
	PropertyType *string `json:"propertyType"` // New property type
	Status       *string `json:"status"`       // New status
	Description  *string `json:"description"`  // New description
}

// UpdateListingHandler updates the provided fields of one listing
func UpdateListingHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			// Non-integer id, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
			return
		}
		var req UpdateListingRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validating parse of the optional fields into a typed update set
		updates := map[string]any{}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Address != nil {
			updates["address"] = *req.Address
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.PriceCents != nil {
			if *req.PriceCents < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "priceCents must be non-negative"})
				return
			}
			updates["price_cents"] = *req.PriceCents
		}
		if req.PropertyType != nil {
			v := strings.ToUpper(*req.PropertyType)
			if !domain.ValidPropertyType(v) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "propertyType must be APARTMENT, HOUSE or COMMERCIAL"})
				return
			}
			updates["property_type"] = v
		}
		if req.Status != nil {
			v := strings.ToUpper(*req.Status)
			if !domain.ValidListingStatus(v) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "status must be FOR_SALE or FOR_RENT"})
				return
			}
			updates["status"] = v
		}
		var listing domain.Listing // Fetch the listing first for a clean 404
		if err := db.First(&listing, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		if len(updates) > 0 {
			// Apply the update set
			if err := db.Model(&listing).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed"})
				return
			}
		}
		c.JSON(http.StatusOK, listing) // Return the updated listing
	}
}

// deleteListingTx removes one listing and its dependent rows. The cascade is
// explicit so it does not depend on the database's FK enforcement settings.
func deleteListingTx(tx *gorm.DB, id uint) error {
	if err := tx.Where("listing_id = ?", id).Delete(&domain.Favorite{}).Error; err != nil {
		return err // Return error to rollback
	}
	if err := tx.Where("listing_id = ?", id).Delete(&domain.Image{}).Error; err != nil {
		return err // Return error to rollback
	}
	return tx.Delete(&domain.Listing{}, id).Error
}

// DeleteListingHandler deletes one listing, its image/favorite rows and,
// best-effort, the image objects in the bucket
func DeleteListingHandler(db *gorm.DB, store ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			// Non-integer id, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
			return
		}
		var listing domain.Listing // Fetch the listing with its images
		if err := db.Preload("Images").First(&listing, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		// Remove the backing objects first, best-effort: a storage failure is
		// logged but does not keep the rows alive
		if len(listing.Images) > 0 {
			keys := make([]string, len(listing.Images))
			for i, img := range listing.Images {
				keys[i] = img.StorageKey // Canonical key stored at upload time
			}
			if err := store.Remove(c.Request.Context(), keys); err != nil {
				logrus.WithFields(logrus.Fields{
					"listing_id": id,          // Listing ID
					"error":      err.Error(), // Error message
				}).Error("Failed to remove listing objects") // Log storage failure
			}
		}
		// Delete the row and its dependents
		if err := db.Transaction(func(tx *gorm.DB) error { return deleteListingTx(tx, id) }); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"listing_id": id, // Listing ID
		}).Info("Listing deleted") // Log deletion
		c.JSON(http.StatusOK, listing) // Return the deleted listing
	}
}

// Request struct for bulk listing deletion
type DeleteListingsRequest struct {
	IdsToDelete []uint `json:"idsToDelete" binding:"required"` // Listing ids to delete
}

// DeleteListingsHandler deletes several listings by id list
func DeleteListingsHandler(db *gorm.DB, store ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DeleteListingsRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || len(req.IdsToDelete) == 0 {
			// Must be a non-empty array of integers
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID list. Must be an array of integers."})
			return
		}
		var images []domain.Image // Collect objects to remove from storage
		if err := db.Where("listing_id IN ?", req.IdsToDelete).Find(&images).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed"})
			return
		}
		if len(images) > 0 {
			keys := make([]string, len(images))
			for i, img := range images {
				keys[i] = img.StorageKey // Canonical key stored at upload time
			}
			// Best-effort object removal, failures logged inside Remove
			_ = store.Remove(c.Request.Context(), keys)
		}
		var deleted int64 // Number of listings actually deleted
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("listing_id IN ?", req.IdsToDelete).Delete(&domain.Favorite{}).Error; err != nil {
				return err // Return error to rollback
			}
			if err := tx.Where("listing_id IN ?", req.IdsToDelete).Delete(&domain.Image{}).Error; err != nil {
				return err // Return error to rollback
			}
			res := tx.Where("id IN ?", req.IdsToDelete).Delete(&domain.Listing{})
			deleted = res.RowsAffected // Count of removed listings
			return res.Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"ids":   req.IdsToDelete, // Requested ids
			"count": deleted,         // Listings actually deleted
		}).Info("Listings deleted") // Log bulk deletion
		c.JSON(http.StatusOK, gin.H{"count": deleted}) // Return the deletion count
	}
}

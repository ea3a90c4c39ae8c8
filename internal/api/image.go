package api

import (
	"context"  // Storage operation context
	"errors"   // Storage error checks
	"io"       // Reading uploaded files
	"net/http" // HTTP status codes

	"landify/internal/domain"  // Importing domain models
	"landify/internal/storage" // Object key derivation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// ObjectStorage is what the handlers need from the bucket client
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) // Store data, return the public URL
	Remove(ctx context.Context, keys []string) error                                         // Delete objects by canonical key
}

// UploadImagesHandler attaches uploaded files to a listing: each file goes
// to the bucket first, then all Image rows are inserted in one transaction
// with 1-based positions. Uploads that succeed before a failed insert are
// orphaned in the bucket; there is no compensating delete.
func UploadImagesHandler(db *gorm.DB, store ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := pathID(c)
		if !ok {
			// Non-integer id, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
			return
		}
		var listing domain.Listing // The listing must exist before uploading anything
		if err := db.First(&listing, listingID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		form, err := c.MultipartForm() // Parse the multipart body
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
			return
		}
		files := form.File["images"] // Uploaded files under the "images" field
		if len(files) == 0 {
			// Nothing to attach
			c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
			return
		}
		images := make([]domain.Image, 0, len(files)) // Rows to insert after all uploads
		for i, fh := range files {
			f, err := fh.Open() // Open the uploaded file
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
				return
			}
			data, err := io.ReadAll(f) // Read the file bytes
			f.Close()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
				return
			}
			key := storage.ObjectKey(fh.Filename) // Canonical key, stored alongside the URL
			url, err := store.Upload(c.Request.Context(), key, data, fh.Header.Get("Content-Type"))
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"listing_id": listingID,   // Listing ID
					"filename":   fh.Filename, // Original filename
					"error":      err.Error(), // Error message
				}).Error("Failed to upload image") // Log upload failure
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Image upload failed"})
				return
			}
			images = append(images, domain.Image{
				ListingID:  listingID,   // Owning listing
				URL:        url,         // Public URL from storage
				StorageKey: key,         // Canonical object key
				AltText:    fh.Filename, // Alt text defaults to the original filename
				Position:   i + 1,       // 1-based position
			})
		}
		// Persist all rows together
		err = db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&images).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				// Listing vanished between the check and the insert
				c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"listing_id": listingID,   // Listing ID
				"count":      len(images), // Uploaded file count, now orphaned in the bucket
				"error":      err.Error(), // Error message
			}).Error("Failed to persist image rows") // Log insert failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist images"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"listing_id": listingID,   // Listing ID
			"count":      len(images), // Attached image count
		}).Info("Images uploaded") // Log successful attach
		c.JSON(http.StatusCreated, gin.H{"message": "Images uploaded successfully", "files": images})
	}
}

// Request struct for detaching images
type RemoveImagesRequest struct {
	ImageIds []uint `json:"imageIds" binding:"required"` // Image ids to detach
}

// RemoveImagesHandler detaches images: rows are deleted first, then the
// bucket objects by their stored canonical keys. The two deletions are not
// transactional with each other.
func RemoveImagesHandler(db *gorm.DB, store ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RemoveImagesRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || len(req.ImageIds) == 0 {
			// Must be a non-empty array of integers
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID list. Must be an array of integers."})
			return
		}
		var images []domain.Image // Fetch the rows to learn the storage keys
		if err := db.Where("id IN ?", req.ImageIds).Find(&images).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed"})
			return
		}
		if len(images) == 0 {
			// None of the ids exist
			c.JSON(http.StatusNotFound, gin.H{"error": "Images not found"})
			return
		}
		// Delete the rows
		if err := db.Where("id IN ?", req.ImageIds).Delete(&domain.Image{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed"})
			return
		}
		keys := make([]string, len(images))
		for i, img := range images {
			keys[i] = img.StorageKey // Canonical key stored at upload time
		}
		// Remove the backing objects; rows are already gone, so a storage
		// failure surfaces as an internal error for the caller to resubmit
		if err := store.Remove(c.Request.Context(), keys); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove objects from storage"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Images deleted successfully", "files": images})
	}
}

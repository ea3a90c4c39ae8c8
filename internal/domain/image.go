package domain

import "time" // Timestamps

// Image Model
type Image struct {
	ID         uint      `gorm:"primaryKey" json:"id"`            // Primary key
	ListingID  uint      `gorm:"not null;index" json:"listingId"` // Foreign key to Listing
	URL        string    `gorm:"not null" json:"url"`             // Public URL served to clients
	StorageKey string    `gorm:"not null" json:"-"`               // Canonical object key; deletes use this, never URL parsing
	AltText    string    `json:"altText"`                         // Alt text, defaults to the original filename
	Position   int       `json:"position"`                        // 1-based ordering, primary image first
	CreatedAt  time.Time `json:"createdAt"`                       // Timestamp of creation
}

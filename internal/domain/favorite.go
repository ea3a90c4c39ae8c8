package domain

import "time" // Timestamps

// Favorite Model
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                // Primary key
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_listing" json:"userId"` // Foreign key to User
	ListingID *uint     `gorm:"uniqueIndex:idx_user_listing" json:"listingId"`       // Foreign key to Listing; nullable, orphaned when the listing is gone
	User      *User     `json:"user,omitempty"`                                      // Owning user projection
	Listing   *Listing  `json:"listing"`                                             // Referenced listing; null for orphaned favorites
	CreatedAt time.Time `json:"createdAt"`                                           // Timestamp of creation
}

package domain

import "time" // Timestamps

// Property types
const (
	PropertyApartment  = "APARTMENT"  // Apartment unit
	PropertyHouse      = "HOUSE"      // Standalone house
	PropertyCommercial = "COMMERCIAL" // Commercial property
)

// Listing statuses
const (
	StatusForSale = "FOR_SALE" // Listed for sale
	StatusForRent = "FOR_RENT" // Listed for rent
)

// Listing Model
type Listing struct {
	ID           uint       `gorm:"primaryKey" json:"id"`                                        // Primary key
	OwnerID      *uint      `json:"ownerId"`                                                     // Foreign key to User; nullable, owner deletion detaches
	Owner        *User      `json:"owner,omitempty"`                                             // Owner projection (password excluded via its json tag)
	Title        string     `gorm:"not null" json:"title"`                                       // Listing title
	Description  *string    `json:"description"`                                                 // Optional description
	Address      string     `gorm:"not null" json:"address"`                                     // Street address
	PriceCents   int64      `gorm:"not null" json:"priceCents"`                                  // Price in integer cents, never floating point
	PropertyType string     `gorm:"not null" json:"propertyType"`                                // APARTMENT, HOUSE or COMMERCIAL
	Status       string     `gorm:"not null" json:"status"`                                      // FOR_SALE or FOR_RENT
	CreatedAt    time.Time  `json:"createdAt"`                                                   // Timestamp of creation
	UpdatedAt    time.Time  `json:"updatedAt"`                                                   // Timestamp of last update
	Images       []Image    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images"` // Gallery images, cascade-deleted with the listing
	Favorites    []Favorite `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`      // Favorites, cascade-deleted with the listing
}

// ValidPropertyType reports whether v is one of the accepted property types
func ValidPropertyType(v string) bool {
	return v == PropertyApartment || v == PropertyHouse || v == PropertyCommercial
}

// ValidListingStatus reports whether v is one of the accepted statuses
func ValidListingStatus(v string) bool {
	return v == StatusForSale || v == StatusForRent
}

// SortableColumns maps accepted sortBy values to listing columns.
// Values outside this map are rejected, not silently defaulted.
var SortableColumns = map[string]string{
	"id":           "id",
	"title":        "title",
	"address":      "address",
	"priceCents":   "price_cents",
	"propertyType": "property_type",
	"status":       "status",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
}

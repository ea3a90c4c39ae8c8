package domain

import "time" // Timestamps

// User roles
const (
	RoleRegular = "REGULAR" // Default role for newly registered users
	RoleAdmin   = "ADMIN"   // Required for listing and image management
)

// User Model
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`                                                       // Primary key
	Email     string     `gorm:"unique;not null" json:"email"`                                               // Unique email, maps the identity provider account to this row
	Password  string     `gorm:"not null" json:"-"`                                                          // Hashed password, never serialized
	Name      string     `gorm:"not null" json:"name"`                                                       // Display name
	Role      string     `gorm:"default:REGULAR" json:"role"`                                                // Role: REGULAR or ADMIN
	CreatedAt time.Time  `json:"createdAt"`                                                                  // Timestamp of creation
	UpdatedAt time.Time  `json:"updatedAt"`                                                                  // Timestamp of last update
	Listings  []Listing  `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"` // Owned listings; deleting the user detaches them
	Favorites []Favorite `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`                     // Saved favorites; deleted with the user
}

package query

import (
	"strings" // Search term handling

	"landify/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// FavoriteQuery is the validated input of a user's favorites listing
type FavoriteQuery struct {
	UserID uint   // Owning user, always required
	Page   int    // 1-based page number
	Limit  int    // Page size
	Search string // Trimmed substring term over the joined listing fields
}

// FavoriteResult is a favorite with its orphan flag. Orphaned favorites
// (listing deleted out from under them) are returned, not hidden.
type FavoriteResult struct {
	domain.Favorite
	Orphaned bool `json:"orphaned"` // True when the referenced listing is gone
}

// FavoritePage is the pagination envelope for favorites
type FavoritePage struct {
	Data       []FavoriteResult `json:"data"`       // Page of favorites
	Total      int64            `json:"total"`      // Total matching rows
	Page       int              `json:"page"`       // Current page
	Limit      int              `json:"limit"`      // Page size
	TotalPages int              `json:"totalPages"` // max(1, ceil(total/limit))
}

// apply adds the user predicate and, when searching, the join against the
// listing text fields. A search term naturally excludes orphaned favorites
// since they have no listing text to match.
func (q *FavoriteQuery) apply(tx *gorm.DB) *gorm.DB {
	tx = tx.Where("favorites.user_id = ?", q.UserID)
	if q.Search != "" {
		term := "%" + strings.ToLower(q.Search) + "%"
		tx = tx.
			Joins("JOIN listings ON listings.id = favorites.listing_id").
			Where("LOWER(listings.title) LIKE ? OR LOWER(listings.description) LIKE ? OR LOWER(listings.address) LIKE ?", term, term, term)
	}
	return tx
}

// Run executes the favorites query, newest first, with the referenced
// listing (plus its images) and the owning user preloaded. Count and fetch
// share one transaction for consistent pagination metadata.
func (q *FavoriteQuery) Run(db *gorm.DB) (*FavoritePage, error) {
	q.Search = strings.TrimSpace(q.Search) // All-whitespace search means no search
	var favorites []domain.Favorite
	var total int64
	err := db.Transaction(func(tx *gorm.DB) error {
		// Count of matching rows
		if err := q.apply(tx.Model(&domain.Favorite{})).Count(&total).Error; err != nil {
			return err // Return error to rollback
		}
		// Page fetch over the same snapshot
		return q.apply(tx.Model(&domain.Favorite{})).
			Preload("User").
			Preload("Listing").
			Preload("Listing.Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
			Order("favorites.created_at desc").
			Offset((q.Page - 1) * q.Limit).
			Limit(q.Limit).
			Find(&favorites).Error
	})
	if err != nil {
		return nil, err
	}
	// Flag orphaned rows instead of dropping them
	data := make([]FavoriteResult, len(favorites))
	for i, f := range favorites {
		data[i] = FavoriteResult{Favorite: f, Orphaned: f.ListingID == nil}
	}
	return &FavoritePage{
		Data:       data,                       // Page of favorites
		Total:      total,                      // Total matching rows
		Page:       q.Page,                     // Current page
		Limit:      q.Limit,                    // Page size
		TotalPages: totalPages(total, q.Limit), // Derived page count
	}, nil
}

// Package query implements the listing search engine: validated
// filter/search/sort/pagination parameters executed against the relational
// store as one atomically consistent count + page fetch.
package query

import (
	"errors"  // Validation errors
	"net/url" // Raw query parameter access
	"strconv" // String conversion
	"strings" // Search term trimming

	"landify/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// PriceRange holds inclusive price bounds in cents; either side may be nil
type PriceRange struct {
	Min *int64 // Lower bound, open-ended when nil
	Max *int64 // Upper bound, open-ended when nil
}

// ListingQuery is the validated input of the listing search.
// Build it with ParseListingQuery; zero-value filters mean "no filter".
type ListingQuery struct {
	Page         int        // 1-based page number
	Limit        int        // Page size
	Status       string     // Exact-match status filter, empty for none
	PropertyType string     // Exact-match property type filter, empty for none
	OwnerID      *uint      // Exact-match owner filter
	ID           *uint      // Exact-match id filter
	Search       string     // Trimmed substring term over title/description/address
	Price        PriceRange // Inclusive price bounds
	SortBy       string     // Whitelisted sort field (camelCase wire name)
	SortOrder    string     // "asc" or "desc"
	ViewerID     *uint      // Optional viewer; enables the isFavorited flag
}

// ListingResult is a listing plus the viewer's favorite flag.
// IsFavorited stays nil (omitted) when the query had no viewer.
type ListingResult struct {
	domain.Listing
	IsFavorited *bool `json:"isFavorited,omitempty"` // Whether the viewer favorited this listing
}

// ListingPage is the pagination envelope returned to clients
type ListingPage struct {
	Data       []ListingResult `json:"data"`       // Page of listings
	Total      int64           `json:"total"`      // Total matching rows
	Page       int             `json:"page"`       // Current page
	Limit      int             `json:"limit"`      // Page size
	TotalPages int             `json:"totalPages"` // max(1, ceil(total/limit))
}

// maxPageLimit caps the page size so one request cannot fetch the whole table
const maxPageLimit = 100

// ParsePagination validates page/limit query parameters, defaulting to 1/10.
// Out-of-range or non-integer values are rejected, not clamped.
func ParsePagination(values url.Values) (int, int, error) {
	page, limit := 1, 10 // Defaults
	if p := values.Get("page"); p != "" {
		v, err := strconv.Atoi(p)
		if err != nil || v <= 0 {
			return 0, 0, errors.New("page must be a positive integer")
		}
		page = v // Set page if valid
	}
	if l := values.Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v <= 0 || v > maxPageLimit {
			return 0, 0, errors.New("limit must be between 1 and 100")
		}
		limit = v // Set limit if valid
	}
	return page, limit, nil
}

// parseID parses an optional positive integer parameter
func parseID(values url.Values, name string) (*uint, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil // Absent means no filter
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, errors.New(name + " must be an integer")
	}
	id := uint(v)
	return &id, nil
}

// parsePrice parses an optional non-negative price bound in cents
func parsePrice(values url.Values, name string) (*int64, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil // Absent means open-ended
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, errors.New(name + " must be a non-negative integer of cents")
	}
	return &v, nil
}

// ParseListingQuery turns raw query parameters into a validated ListingQuery.
// Invalid enum values, unknown sortBy fields and non-positive page/limit are
// rejected here, before any data-layer call.
func ParseListingQuery(values url.Values) (*ListingQuery, error) {
	page, limit, err := ParsePagination(values)
	if err != nil {
		return nil, err
	}
	q := &ListingQuery{Page: page, Limit: limit, SortBy: "updatedAt", SortOrder: "desc"}

	if s := values.Get("status"); s != "" {
		s = strings.ToUpper(s) // Filters arrive lowercase from the UI
		if !domain.ValidListingStatus(s) {
			return nil, errors.New("status must be FOR_SALE or FOR_RENT")
		}
		q.Status = s
	}
	if p := values.Get("propertyType"); p != "" {
		p = strings.ToUpper(p)
		if !domain.ValidPropertyType(p) {
			return nil, errors.New("propertyType must be APARTMENT, HOUSE or COMMERCIAL")
		}
		q.PropertyType = p
	}
	if q.OwnerID, err = parseID(values, "ownerId"); err != nil {
		return nil, err
	}
	if q.ID, err = parseID(values, "id"); err != nil {
		return nil, err
	}
	if q.Price.Min, err = parsePrice(values, "minPrice"); err != nil {
		return nil, err
	}
	if q.Price.Max, err = parsePrice(values, "maxPrice"); err != nil {
		return nil, err
	}
	// All-whitespace search is treated as absent
	q.Search = strings.TrimSpace(values.Get("search"))

	if s := values.Get("sortBy"); s != "" {
		// Unknown sort fields are an input error, never a silent fallback
		if _, ok := domain.SortableColumns[s]; !ok {
			return nil, errors.New("sortBy is not a sortable field")
		}
		q.SortBy = s
	}
	if o := values.Get("sortOrder"); o != "" {
		if o != "asc" && o != "desc" {
			return nil, errors.New("sortOrder must be asc or desc")
		}
		q.SortOrder = o
	}
	return q, nil
}

// apply adds the conjunctive filter predicate to tx
func (q *ListingQuery) apply(tx *gorm.DB) *gorm.DB {
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.PropertyType != "" {
		tx = tx.Where("property_type = ?", q.PropertyType)
	}
	if q.OwnerID != nil {
		tx = tx.Where("owner_id = ?", *q.OwnerID)
	}
	if q.ID != nil {
		tx = tx.Where("id = ?", *q.ID)
	}
	if q.Search != "" {
		// Case-insensitive substring match, OR'd across the text fields
		term := "%" + strings.ToLower(q.Search) + "%"
		tx = tx.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(address) LIKE ?", term, term, term)
	}
	if q.Price.Min != nil {
		tx = tx.Where("price_cents >= ?", *q.Price.Min)
	}
	if q.Price.Max != nil {
		tx = tx.Where("price_cents <= ?", *q.Price.Max)
	}
	return tx
}

// Run executes the query: count and page fetch inside one transaction so the
// pagination metadata always agrees with the returned rows, images and the
// reduced owner projection preloaded, the viewer's favorites joined in the
// same fetch rather than per-row queries.
func (q *ListingQuery) Run(db *gorm.DB) (*ListingPage, error) {
	var listings []domain.Listing
	var total int64
	err := db.Transaction(func(tx *gorm.DB) error {
		// Count of matching rows
		if err := q.apply(tx.Model(&domain.Listing{})).Count(&total).Error; err != nil {
			return err // Return error to rollback
		}
		// Sorted page fetch over the same snapshot
		fetch := q.apply(tx.Model(&domain.Listing{})).
			Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
			Preload("Owner").
			Order(domain.SortableColumns[q.SortBy] + " " + q.SortOrder).
			Offset((q.Page - 1) * q.Limit).
			Limit(q.Limit)
		if q.ViewerID != nil {
			// Only the viewer's own favorite rows are needed for the flag
			fetch = fetch.Preload("Favorites", "user_id = ?", *q.ViewerID)
		}
		return fetch.Find(&listings).Error
	})
	if err != nil {
		return nil, err
	}
	// Annotate with the per-viewer favorite flag
	data := make([]ListingResult, len(listings))
	for i, l := range listings {
		r := ListingResult{Listing: l}
		if q.ViewerID != nil {
			fav := len(l.Favorites) > 0 // Favorite row exists for (viewer, listing)
			r.IsFavorited = &fav
		}
		data[i] = r
	}
	return &ListingPage{
		Data:       data,                       // Page of listings
		Total:      total,                      // Total matching rows
		Page:       q.Page,                     // Current page
		Limit:      q.Limit,                    // Page size
		TotalPages: totalPages(total, q.Limit), // Derived page count
	}, nil
}

// totalPages computes max(1, ceil(total/limit))
func totalPages(total int64, limit int) int {
	pages := int((total + int64(limit) - 1) / int64(limit))
	if pages < 1 {
		pages = 1 // Empty result still reports one page
	}
	return pages
}

// ListingDetail is the single-listing projection with the favorite count
type ListingDetail struct {
	domain.Listing
	IsFavorited    *bool `json:"isFavorited,omitempty"` // Viewer favorite flag, omitted without a viewer
	FavoritesCount int64 `json:"favoritesCount"`        // Total favorites across all users
}

// GetListingByID fetches one listing with images, owner projection, total
// favorite count and, when a viewer is given, the viewer's favorite flag.
// Returns gorm.ErrRecordNotFound when no such listing exists.
func GetListingByID(db *gorm.DB, id uint, viewerID *uint) (*ListingDetail, error) {
	var listing domain.Listing
	var count int64
	err := db.Transaction(func(tx *gorm.DB) error {
		fetch := tx.
			Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
			Preload("Owner")
		if viewerID != nil {
			fetch = fetch.Preload("Favorites", "user_id = ?", *viewerID)
		}
		if err := fetch.First(&listing, id).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Favorite{}).Where("listing_id = ?", id).Count(&count).Error
	})
	if err != nil {
		return nil, err
	}
	detail := &ListingDetail{Listing: listing, FavoritesCount: count}
	if viewerID != nil {
		fav := len(listing.Favorites) > 0
		detail.IsFavorited = &fav
	}
	return detail, nil
}

package query

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"landify/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a per-test in-memory database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Listing{}, &domain.Image{}, &domain.Favorite{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) *domain.User {
	t.Helper()
	user := &domain.User{Email: email, Password: "x", Name: "Test User", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedListing(t *testing.T, db *gorm.DB, owner *domain.User, title, address string, priceCents int64, propertyType, status string) *domain.Listing {
	t.Helper()
	listing := &domain.Listing{
		Title:        title,
		Address:      address,
		PriceCents:   priceCents,
		PropertyType: propertyType,
		Status:       status,
	}
	if owner != nil {
		listing.OwnerID = &owner.ID
	}
	require.NoError(t, db.Create(listing).Error)
	return listing
}

func values(pairs ...string) url.Values {
	v := url.Values{}
	for i := 0; i < len(pairs); i += 2 {
		v.Set(pairs[i], pairs[i+1])
	}
	return v
}

func TestParseListingQueryDefaults(t *testing.T) {
	q, err := ParseListingQuery(values())
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, "updatedAt", q.SortBy)
	assert.Equal(t, "desc", q.SortOrder)
	assert.Empty(t, q.Status)
	assert.Nil(t, q.OwnerID)
	assert.Nil(t, q.Price.Min)
	assert.Nil(t, q.Price.Max)
}

func TestParseListingQueryRejectsBadInput(t *testing.T) {
	cases := []url.Values{
		values("page", "0"),
		values("page", "abc"),
		values("limit", "-5"),
		values("limit", "101"),
		values("status", "SOLD"),
		values("propertyType", "CASTLE"),
		values("ownerId", "two"),
		values("minPrice", "-1"),
		values("maxPrice", "1.50"),
		values("sortBy", "password"),
		values("sortOrder", "sideways"),
	}
	for _, v := range cases {
		_, err := ParseListingQuery(v)
		assert.Error(t, err, "expected rejection for %v", v)
	}
}

func TestParseListingQueryNormalizesInput(t *testing.T) {
	q, err := ParseListingQuery(values("status", "for_rent", "propertyType", "apartment", "search", "   "))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusForRent, q.Status)
	assert.Equal(t, domain.PropertyApartment, q.PropertyType)
	// All-whitespace search is treated as absent
	assert.Empty(t, q.Search)

	q, err = ParseListingQuery(values("search", "  loft  "))
	require.NoError(t, err)
	assert.Equal(t, "loft", q.Search)

	// The cap itself is still a valid page size
	q, err = ParseListingQuery(values("limit", "100"))
	require.NoError(t, err)
	assert.Equal(t, 100, q.Limit)
}

func TestListingQueryPagination(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 25; i++ {
		seedListing(t, db, nil, fmt.Sprintf("Listing %02d", i), fmt.Sprintf("%d Elm St", i), int64(1000*(i+1)), domain.PropertyHouse, domain.StatusForSale)
	}

	q := &ListingQuery{Page: 2, Limit: 10, SortBy: "id", SortOrder: "asc"}
	page, err := q.Run(db)
	require.NoError(t, err)
	assert.Equal(t, int64(25), page.Total)
	assert.Len(t, page.Data, 10)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, "Listing 10", page.Data[0].Title)

	// A page beyond the available range is empty, not an error
	q = &ListingQuery{Page: 99, Limit: 10, SortBy: "id", SortOrder: "asc"}
	page, err = q.Run(db)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(25), page.Total)

	// No matches still reports one page
	q = &ListingQuery{Page: 1, Limit: 10, SortBy: "id", SortOrder: "asc", Status: domain.StatusForRent}
	page, err = q.Run(db)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, 1, page.TotalPages)
}

func TestListingQueryFilters(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice@example.com", domain.RoleAdmin)
	bob := seedUser(t, db, "bob@example.com", domain.RoleAdmin)
	seedListing(t, db, alice, "City Flat", "1 Oak Ave", 250000, domain.PropertyApartment, domain.StatusForRent)
	seedListing(t, db, alice, "Country House", "2 Oak Ave", 900000, domain.PropertyHouse, domain.StatusForSale)
	seedListing(t, db, bob, "Corner Shop", "3 Oak Ave", 500000, domain.PropertyCommercial, domain.StatusForSale)

	q := &ListingQuery{Page: 1, Limit: 10, SortBy: "id", SortOrder: "asc", Status: domain.StatusForSale}
	page, err := q.Run(db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	q = &ListingQuery{Page: 1, Limit: 10, SortBy: "id", SortOrder: "asc", PropertyType: domain.PropertyApartment}
	page, err = q.Run(db)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "City Flat", page.Data[0].Title)

	q = &ListingQuery{Page: 1, Limit: 10, SortBy: "id", SortOrder: "asc", OwnerID: &bob.ID}
	page, err = q.Run(db)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Corner Shop", page.Data[0].Title)

	// Filters are conjunctive
	q = &ListingQuery{Page: 1, Limit: 10, SortBy: "id", SortOrder: "asc", Status: domain.StatusForSale, OwnerID: &alice.ID}
	page, err = q.Run(db)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Country House", page.Data[0].Title)
}

func TestListingQuerySearchCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	desc := "Sunny two-bedroom"
	listing := seedListing(t, db, nil, "Cozy Loft", "123 Main St", 100000, domain.PropertyApartment, domain.StatusForRent)
	listing.Description = &desc
	require.NoError(t, db.Save(listing).Error)
	seedListing(t, db, nil, "Dark Basement", "9 Side Rd", 50000, domain.PropertyApartment, domain.StatusForRent)

	for _, term := range []string{"Main", "main", "MAIN", "loft", "sunny"} {
		q := &ListingQuery{Page: 1, Limit: 10, SortBy: "id", SortOrder: "asc", Search: term}
		page, err := q.Run(db)
		require.NoError(t, err)
		require.Len(t, page.Data, 1, "term %q", term)
		assert.Equal(t, "Cozy Loft", page.Data[0].Title, "term %q", term)
	}

	q := &ListingQuery{Page: 1, Limit: 10, SortBy: "id", SortOrder: "asc", Search: "penthouse"}
	page, err := q.Run(db)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}

func TestListingQueryPriceRange(t *testing.T) {
	db := newTestDB(t)
	seedListing(t, db, nil, "Cheap", "1 Low St", 40000, domain.PropertyHouse, domain.StatusForSale)
	seedListing(t, db, nil, "Middle", "2 Mid St", 100000, domain.PropertyHouse, domain.StatusForSale)
	seedListing(t, db, nil, "Expensive", "3 High St", 300000, domain.PropertyHouse, domain.StatusForSale)

	min, max := int64(50000), int64(200000)

	q := &ListingQuery{Page: 1, Limit: 10, SortBy: "id", SortOrder: "asc", Price: PriceRange{Min: &min, Max: &max}}
	page, err := q.Run(db)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Middle", page.Data[0].Title)
	for _, l := range page.Data {
		assert.GreaterOrEqual(t, l.PriceCents, min)
		assert.LessOrEqual(t, l.PriceCents, max)
	}

	// Each bound is independently open-ended
	q = &ListingQuery{Page: 1, Limit: 10, SortBy: "id", SortOrder: "asc", Price: PriceRange{Min: &min}}
	page, err = q.Run(db)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)

	q = &ListingQuery{Page: 1, Limit: 10, SortBy: "id", SortOrder: "asc", Price: PriceRange{Max: &max}}
	page, err = q.Run(db)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)

	// Bounds are inclusive
	exact := int64(100000)
	q = &ListingQuery{Page: 1, Limit: 10, SortBy: "id", SortOrder: "asc", Price: PriceRange{Min: &exact, Max: &exact}}
	page, err = q.Run(db)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
}

func TestListingQuerySorting(t *testing.T) {
	db := newTestDB(t)
	seedListing(t, db, nil, "B", "1 St", 200, domain.PropertyHouse, domain.StatusForSale)
	seedListing(t, db, nil, "A", "2 St", 100, domain.PropertyHouse, domain.StatusForSale)
	seedListing(t, db, nil, "C", "3 St", 300, domain.PropertyHouse, domain.StatusForSale)

	q := &ListingQuery{Page: 1, Limit: 10, SortBy: "priceCents", SortOrder: "asc"}
	page, err := q.Run(db)
	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "A", page.Data[0].Title)
	assert.Equal(t, "C", page.Data[2].Title)

	q = &ListingQuery{Page: 1, Limit: 10, SortBy: "title", SortOrder: "desc"}
	page, err = q.Run(db)
	require.NoError(t, err)
	assert.Equal(t, "C", page.Data[0].Title)
}

func TestListingQueryViewerFlag(t *testing.T) {
	db := newTestDB(t)
	viewer := seedUser(t, db, "viewer@example.com", domain.RoleRegular)
	other := seedUser(t, db, "other@example.com", domain.RoleRegular)
	liked := seedListing(t, db, nil, "Liked", "1 St", 100, domain.PropertyHouse, domain.StatusForSale)
	plain := seedListing(t, db, nil, "Plain", "2 St", 200, domain.PropertyHouse, domain.StatusForSale)
	require.NoError(t, db.Create(&domain.Favorite{UserID: viewer.ID, ListingID: &liked.ID}).Error)
	// Another user's favorite must not leak into the viewer's flag
	require.NoError(t, db.Create(&domain.Favorite{UserID: other.ID, ListingID: &plain.ID}).Error)

	q := &ListingQuery{Page: 1, Limit: 10, SortBy: "id", SortOrder: "asc", ViewerID: &viewer.ID}
	page, err := q.Run(db)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.NotNil(t, page.Data[0].IsFavorited)
	assert.True(t, *page.Data[0].IsFavorited)
	require.NotNil(t, page.Data[1].IsFavorited)
	assert.False(t, *page.Data[1].IsFavorited)

	// Without a viewer the flag stays nil, never false-by-default
	q = &ListingQuery{Page: 1, Limit: 10, SortBy: "id", SortOrder: "asc"}
	page, err = q.Run(db)
	require.NoError(t, err)
	for _, l := range page.Data {
		assert.Nil(t, l.IsFavorited)
	}
}

func TestListingQueryPreloads(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner@example.com", domain.RoleAdmin)
	listing := seedListing(t, db, owner, "With Images", "1 St", 100, domain.PropertyHouse, domain.StatusForSale)
	require.NoError(t, db.Create(&domain.Image{ListingID: listing.ID, URL: "http://cdn.test/b", StorageKey: "uploads/b.jpg", Position: 2}).Error)
	require.NoError(t, db.Create(&domain.Image{ListingID: listing.ID, URL: "http://cdn.test/a", StorageKey: "uploads/a.jpg", Position: 1}).Error)

	q := &ListingQuery{Page: 1, Limit: 10, SortBy: "id", SortOrder: "asc"}
	page, err := q.Run(db)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Len(t, page.Data[0].Images, 2)
	// Images come back ordered by position
	assert.Equal(t, 1, page.Data[0].Images[0].Position)
	require.NotNil(t, page.Data[0].Owner)
	assert.Equal(t, owner.Email, page.Data[0].Owner.Email)
}

func TestGetListingByID(t *testing.T) {
	db := newTestDB(t)
	viewer := seedUser(t, db, "viewer@example.com", domain.RoleRegular)
	other := seedUser(t, db, "other@example.com", domain.RoleRegular)
	listing := seedListing(t, db, nil, "Single", "1 St", 100, domain.PropertyHouse, domain.StatusForSale)
	require.NoError(t, db.Create(&domain.Favorite{UserID: viewer.ID, ListingID: &listing.ID}).Error)
	require.NoError(t, db.Create(&domain.Favorite{UserID: other.ID, ListingID: &listing.ID}).Error)

	detail, err := GetListingByID(db, listing.ID, &viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detail.FavoritesCount)
	require.NotNil(t, detail.IsFavorited)
	assert.True(t, *detail.IsFavorited)

	detail, err = GetListingByID(db, listing.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, detail.IsFavorited)

	_, err = GetListingByID(db, 9999, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

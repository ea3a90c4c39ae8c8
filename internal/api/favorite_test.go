package api

import (
	"net/http"
	"testing"

	"landify/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFavorite(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com", domain.RoleRegular)
	seedListing(t, db, nil, "Cozy Loft", "5 Main St", 100000, domain.PropertyApartment, domain.StatusForRent)
	r := gin.New()
	r.POST("/favorite/add/:id", authAs(user), AddFavoriteHandler(db))

	w := perform(r, http.MethodPost, "/favorite/add/1", nil, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The same pair again is a conflict, not an upsert
	w = perform(r, http.MethodPost, "/favorite/add/1", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Exactly one favorite row exists for the pair
	var count int64
	require.NoError(t, db.Model(&domain.Favorite{}).Where("user_id = ? AND listing_id = ?", user.ID, 1).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAddFavoriteMissingListing(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com", domain.RoleRegular)
	r := gin.New()
	r.POST("/favorite/add/:id", authAs(user), AddFavoriteHandler(db))

	w := perform(r, http.MethodPost, "/favorite/add/999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// No favorite row was created
	var count int64
	require.NoError(t, db.Model(&domain.Favorite{}).Count(&count).Error)
	assert.Zero(t, count)

	// Non-integer id is invalid input
	w = perform(r, http.MethodPost, "/favorite/add/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveFavorite(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com", domain.RoleRegular)
	other := seedUser(t, db, "other@example.com", domain.RoleRegular)
	listing := seedListing(t, db, nil, "Cozy Loft", "5 Main St", 100000, domain.PropertyApartment, domain.StatusForRent)
	require.NoError(t, db.Create(&domain.Favorite{UserID: user.ID, ListingID: &listing.ID}).Error)
	require.NoError(t, db.Create(&domain.Favorite{UserID: other.ID, ListingID: &listing.ID}).Error)

	r := gin.New()
	r.DELETE("/favorite/delete/:id", authAs(user), RemoveFavoriteHandler(db))

	w := perform(r, http.MethodDelete, "/favorite/delete/1", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Removing again is a NotFound
	w = perform(r, http.MethodDelete, "/favorite/delete/1", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The other user's favorite is untouched
	var count int64
	require.NoError(t, db.Model(&domain.Favorite{}).Where("user_id = ?", other.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetFavorites(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com", domain.RoleRegular)
	loft := seedListing(t, db, nil, "Cozy Loft", "5 Main St", 100000, domain.PropertyApartment, domain.StatusForRent)
	barn := seedListing(t, db, nil, "Old Barn", "7 Farm Rd", 50000, domain.PropertyHouse, domain.StatusForSale)
	require.NoError(t, db.Create(&domain.Favorite{UserID: user.ID, ListingID: &loft.ID}).Error)
	require.NoError(t, db.Create(&domain.Favorite{UserID: user.ID, ListingID: &barn.ID}).Error)

	r := gin.New()
	r.GET("/favorite/get", authAs(user), GetFavoritesHandler(db))

	w := perform(r, http.MethodGet, "/favorite/get", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page struct {
		Data       []map[string]any `json:"data"`
		Total      int64            `json:"total"`
		TotalPages int              `json:"totalPages"`
	}
	decodeBody(t, w, &page)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 1, page.TotalPages)

	// Search narrows over the joined listing fields
	w = perform(r, http.MethodGet, "/favorite/get?search=barn", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &page)
	require.Len(t, page.Data, 1)

	// Invalid pagination is rejected at the boundary
	w = perform(r, http.MethodGet, "/favorite/get?limit=0", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteFavoritesBulk(t *testing.T) {
	db := newTestDB(t)
	admin := seedUser(t, db, "admin@example.com", domain.RoleAdmin)
	user := seedUser(t, db, "user@example.com", domain.RoleRegular)
	listing := seedListing(t, db, nil, "Cozy Loft", "5 Main St", 100000, domain.PropertyApartment, domain.StatusForRent)
	f1 := domain.Favorite{UserID: user.ID, ListingID: &listing.ID}
	require.NoError(t, db.Create(&f1).Error)
	f2 := domain.Favorite{UserID: admin.ID, ListingID: &listing.ID}
	require.NoError(t, db.Create(&f2).Error)

	r := gin.New()
	r.DELETE("/favorite/delete", authAs(admin), DeleteFavoritesHandler(db))

	w := performJSON(r, http.MethodDelete, "/favorite/delete", gin.H{"idsToDelete": []uint{f1.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var remaining []domain.Favorite
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, f2.ID, remaining[0].ID)
}

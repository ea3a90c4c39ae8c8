package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"landify/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

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

// authAs stands in for the auth middleware, resolving every request to user
func authAs(user *domain.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("currentUser", user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

// fakeStore is an in-memory ObjectStorage double
type fakeStore struct {
	uploads   map[string][]byte // Key -> stored bytes
	removed   []string          // Keys passed to Remove
	uploadErr error             // Forced Upload failure
	removeErr error             // Forced Remove failure
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploads: map[string][]byte{}}
}

func (f *fakeStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads[key] = data
	return "http://cdn.test/landify-bucket/" + key, nil
}

func (f *fakeStore) Remove(_ context.Context, keys []string) error {
	f.removed = append(f.removed, keys...)
	return f.removeErr
}

// perform runs one request against r and returns the recorder
func perform(r *gin.Engine, method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func performJSON(r *gin.Engine, method, target string, payload any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(payload)
	return perform(r, method, target, b, "application/json")
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), "body: %s", w.Body.String())
}

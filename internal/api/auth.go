package api

import (
	"bytes"         // Request body buffers
	"encoding/json" // JSON encoding for provider calls
	"errors"        // Storage error checks
	"io"            // Provider response passthrough
	"net/http"      // HTTP status codes and provider client
	"regexp"        // Regular expressions
	"strings"       // String manipulation

	"landify/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
	Name     string `json:"name" binding:"required"`     // Display name must be provided
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// isValidEmail checks the email shape before calling the provider
func isValidEmail(email string) bool {
	matched, _ := regexp.MatchString(`^[^@\s]+@[^@\s]+\.[^@\s]+$`, email) // Simple email shape check
	return matched                                                        // Return whether it matched
}

// isValidPassword checks if the password length is between 8 and 72 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 72 // 72 is the bcrypt input limit
}

// postProvider sends a JSON body to an identity provider endpoint
func postProvider(client *http.Client, url string, body any) (*http.Response, error) {
	b, err := json.Marshal(body) // Marshal request body
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return client.Do(req) // Send to the provider
}

// RegisterHandler creates the account at the identity provider and the
// matching local user row (REGULAR role). The provider client is passed in
// alongside the base URL rather than held as package state.
func RegisterHandler(db *gorm.DB, client *http.Client, identityURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate email and password before leaving the boundary
		if !isValidEmail(req.Email) {
			// If email is invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
			return
		}
		// Validate password length
		if !isValidPassword(req.Password) {
			// If password is invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-72 characters"})
			return
		}
		email := strings.ToLower(req.Email) // Lowercase email to keep uniqueness case-insensitive
		// Create the account at the identity provider first
		resp, err := postProvider(client, identityURL+"/signup", gin.H{"email": email, "password": req.Password})
		if err != nil {
			// Provider unreachable
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Identity provider unavailable"})
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= http.StatusMultipleChoices {
			// Provider rejected the signup (e.g. account already exists there)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Registration rejected by identity provider"})
			return
		}
		// Hash the password for the local credential copy
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		// Create the local user the provider account maps to
		user := domain.User{Email: email, Password: string(hash), Name: req.Name, Role: domain.RoleRegular}
		if err := db.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Local account already exists for this email
				c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}
		// Return the created user (password excluded by its json tag)
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
	}
}

// LoginHandler authenticates against the identity provider and passes its
// token pair (access/refresh) through to the client
func LoginHandler(client *http.Client, identityURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Exchange credentials for a token pair at the provider
		resp, err := postProvider(client, identityURL+"/token?grant_type=password", gin.H{
			"email":    strings.ToLower(req.Email), // Provider account email
			"password": req.Password,               // Provider account password
		})
		if err != nil {
			// Provider unreachable
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Identity provider unavailable"})
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			// Wrong credentials or unknown account
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		body, err := io.ReadAll(resp.Body) // Read the provider token payload
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read provider response"})
			return
		}
		// Pass the provider token pair through untouched
		c.Data(http.StatusOK, "application/json", body)
	}
}

// GetUserHandler returns one local user by id (authenticated callers only;
// the password hash is excluded by its json tag)
func GetUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			// Non-integer id, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}
		var user domain.User // Look up the user row
		if err := db.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// No user with this id
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "User fetch failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user}) // Return the user projection
	}
}

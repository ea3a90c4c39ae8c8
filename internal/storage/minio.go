package storage

import (
	"bytes"         // Reader over uploaded file bytes
	"context"       // Context for storage operations
	"path/filepath" // For original filename extensions
	"strings"       // URL assembly

	"github.com/google/uuid"                       // Unique object key derivation
	"github.com/minio/minio-go/v7"                 // MinIO client
	"github.com/minio/minio-go/v7/pkg/credentials" // Static credentials
	"github.com/sirupsen/logrus"                   // Logging library
)

// Client wraps the object storage bucket holding listing images
type Client struct {
	mc        *minio.Client // Underlying MinIO client
	bucket    string        // Bucket name
	publicURL string        // Base URL under which objects are publicly served
}

// New connects to object storage and makes sure the bucket exists
func New(endpoint, accessKey, secretKey, bucket, publicURL string, useSSL bool) (*Client, error) {
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""), // Static credentials
		Secure: useSSL,                                            // TLS toggle
	})
	if err != nil {
		return nil, err // Client construction failed
	}
	// Create the bucket if it doesn't exist yet
	if err := mc.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
		exists, errExists := mc.BucketExists(context.Background(), bucket)
		if errExists != nil || !exists {
			return nil, err // Bucket neither creatable nor present
		}
	}
	return &Client{
		mc:        mc,                                // MinIO client
		bucket:    bucket,                            // Bucket name
		publicURL: strings.TrimRight(publicURL, "/"), // Normalized public base URL
	}, nil
}

// ObjectKey derives a unique storage key for an uploaded file,
// keeping the original extension
func ObjectKey(originalName string) string {
	return "uploads/" + uuid.New().String() + filepath.Ext(originalName)
}

// Upload stores data under key and returns the public URL for it
func (c *Client) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := c.mc.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType, // Preserve the uploaded mime type
	})
	if err != nil {
		return "", err // Upload failed
	}
	return c.publicURL + "/" + c.bucket + "/" + key, nil // Public URL for the object
}

// Remove deletes objects by their canonical keys, best-effort: every key
// is attempted and the first failure is returned afterwards
func (c *Client) Remove(ctx context.Context, keys []string) error {
	var firstErr error
	for _, key := range keys {
		if err := c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			logrus.WithFields(logrus.Fields{
				"bucket": c.bucket,    // Bucket name
				"key":    key,         // Object key
				"error":  err.Error(), // Error message
			}).Error("Failed to remove object") // Log removal failure
			if firstErr == nil {
				firstErr = err // Keep the first failure
			}
		}
	}
	return firstErr
}

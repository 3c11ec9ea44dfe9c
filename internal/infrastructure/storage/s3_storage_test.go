package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraconfig "github.com/formhub/backend/internal/infrastructure/config"
)

func validStorageConfig() *infraconfig.StorageConfig {
	return &infraconfig.StorageConfig{
		Endpoint:        "minio.internal:9000",
		Region:          "us-east-1",
		Bucket:          "formhub-uploads",
		AccessKeyID:     "test-access",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
		MaxUploadSize:   5 * 1024 * 1024,
	}
}

func TestNewS3ImageStorage(t *testing.T) {
	t.Run("creates storage from valid config", func(t *testing.T) {
		store, err := NewS3ImageStorage(validStorageConfig())
		require.NoError(t, err)
		assert.Equal(t, int64(5*1024*1024), store.MaxUploadSize())
	})

	t.Run("rejects missing bucket", func(t *testing.T) {
		cfg := validStorageConfig()
		cfg.Bucket = ""
		_, err := NewS3ImageStorage(cfg)
		assert.ErrorContains(t, err, "bucket")
	})

	t.Run("rejects missing credentials", func(t *testing.T) {
		cfg := validStorageConfig()
		cfg.AccessKeyID = ""
		_, err := NewS3ImageStorage(cfg)
		assert.ErrorContains(t, err, "access key")

		cfg = validStorageConfig()
		cfg.SecretAccessKey = ""
		_, err = NewS3ImageStorage(cfg)
		assert.ErrorContains(t, err, "secret key")
	})

	t.Run("rejects nil config", func(t *testing.T) {
		_, err := NewS3ImageStorage(nil)
		assert.Error(t, err)
	})
}

func TestObjectKey(t *testing.T) {
	t.Run("keeps only the extension from the file name", func(t *testing.T) {
		key := ObjectKey("before_image", "IMG 2024 final.JPG")
		parts := strings.SplitN(key, "/", 2)
		require.Len(t, parts, 2)
		assert.Equal(t, "before_image", parts[0])
		assert.True(t, strings.HasSuffix(parts[1], ".jpg"))
		assert.NotContains(t, parts[1], " ")
	})

	t.Run("generates unique keys for identical input", func(t *testing.T) {
		assert.NotEqual(t, ObjectKey("photo", "a.png"), ObjectKey("photo", "a.png"))
	})

	t.Run("sanitizes hostile field ids", func(t *testing.T) {
		key := ObjectKey("../../etc", "x.png")
		assert.Equal(t, "______etc", strings.SplitN(key, "/", 2)[0])
	})

	t.Run("drops oversized extensions", func(t *testing.T) {
		key := ObjectKey("f", "file.somethingverylong")
		assert.NotContains(t, key, "somethingverylong")
	})
}

func TestPublicURL(t *testing.T) {
	t.Run("prefers public base URL", func(t *testing.T) {
		cfg := validStorageConfig()
		cfg.PublicBaseURL = "https://cdn.example.com/uploads/"
		store, err := NewS3ImageStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/uploads/photo/abc.png", store.PublicURL("photo/abc.png"))
	})

	t.Run("falls back to endpoint with bucket", func(t *testing.T) {
		store, err := NewS3ImageStorage(validStorageConfig())
		require.NoError(t, err)
		assert.Equal(t, "https://minio.internal:9000/formhub-uploads/photo/abc.png", store.PublicURL("photo/abc.png"))
	})

	t.Run("uses virtual-hosted AWS URL without endpoint", func(t *testing.T) {
		cfg := validStorageConfig()
		cfg.Endpoint = ""
		store, err := NewS3ImageStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://formhub-uploads.s3.amazonaws.com/photo/abc.png", store.PublicURL("photo/abc.png"))
	})
}

package forms

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formhub/backend/internal/domain/shared"
)

// mockImageStorage is a mock implementation of ImageStorage
type mockImageStorage struct {
	maxSize int64
	err     error
	uploads []string
}

func (m *mockImageStorage) Upload(_ context.Context, fieldID, fileName, _ string, _ io.Reader, _ int64) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	key := fieldID + "/" + fileName
	m.uploads = append(m.uploads, key)
	return key, "https://cdn.example.com/" + key, nil
}

func (m *mockImageStorage) MaxUploadSize() int64 { return m.maxSize }

func TestUploadServiceUpload(t *testing.T) {
	input := func() UploadInput {
		return UploadInput{
			FieldID:     "before_image",
			FileName:    "shelf.jpg",
			ContentType: "image/jpeg",
			Size:        1024,
			Body:        strings.NewReader("fake image bytes"),
		}
	}

	t.Run("stores the file and echoes the upload metadata", func(t *testing.T) {
		store := &mockImageStorage{maxSize: 4096}
		result, err := NewUploadService(store).Upload(context.Background(), input())
		require.NoError(t, err)
		assert.Equal(t, "before_image", result.FieldID)
		assert.Equal(t, "https://cdn.example.com/before_image/shelf.jpg", result.URL)
		assert.Equal(t, "shelf.jpg", result.FileName)
		assert.Equal(t, int64(1024), result.Size)
		assert.Equal(t, "image/jpeg", result.Type)
		assert.Len(t, store.uploads, 1)
	})

	t.Run("rejects a missing field id", func(t *testing.T) {
		in := input()
		in.FieldID = ""
		_, err := NewUploadService(&mockImageStorage{}).Upload(context.Background(), in)
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("rejects an empty file", func(t *testing.T) {
		in := input()
		in.Size = 0
		_, err := NewUploadService(&mockImageStorage{}).Upload(context.Background(), in)
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("rejects files over the cap", func(t *testing.T) {
		in := input()
		in.Size = 10_000
		_, err := NewUploadService(&mockImageStorage{maxSize: 4096}).Upload(context.Background(), in)
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("missing storage is a configuration error", func(t *testing.T) {
		_, err := NewUploadService(nil).Upload(context.Background(), input())
		assert.ErrorIs(t, err, shared.ErrConfiguration)
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		store := &mockImageStorage{err: assert.AnError}
		_, err := NewUploadService(store).Upload(context.Background(), input())
		assert.ErrorIs(t, err, assert.AnError)
	})
}

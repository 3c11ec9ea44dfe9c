package forms

import (
	"context"
	"io"

	"github.com/formhub/backend/internal/domain/shared"
)

// ImageStorage stores an uploaded file and returns its object key and the
// public URL it will be served from.
type ImageStorage interface {
	Upload(ctx context.Context, fieldID, fileName, contentType string, body io.Reader, size int64) (key, url string, err error)
	MaxUploadSize() int64
}

// UploadInput carries one multipart file upload
type UploadInput struct {
	FieldID     string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadService stores submission images ahead of the submission itself, so
// the submission payload only carries URLs.
type UploadService struct {
	storage ImageStorage
}

// NewUploadService creates an UploadService. A nil storage means uploads are
// unconfigured and every call fails with a configuration error.
func NewUploadService(storage ImageStorage) *UploadService {
	return &UploadService{storage: storage}
}

// Upload validates and stores one file
func (s *UploadService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if s.storage == nil {
		return nil, shared.ErrConfiguration
	}
	if input.FieldID == "" {
		return nil, fieldError("fieldId", "Field id is required")
	}
	if input.Body == nil || input.Size <= 0 {
		return nil, fieldError("file", "A non-empty file is required")
	}
	if max := s.storage.MaxUploadSize(); max > 0 && input.Size > max {
		return nil, fieldError("file", "File is larger than the upload limit")
	}

	_, url, err := s.storage.Upload(ctx, input.FieldID, input.FileName, input.ContentType, input.Body, input.Size)
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		FieldID:  input.FieldID,
		URL:      url,
		FileName: input.FileName,
		Size:     input.Size,
		Type:     input.ContentType,
	}, nil
}

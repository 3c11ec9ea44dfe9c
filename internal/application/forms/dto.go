package forms

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/formhub/backend/internal/domain/forms"
)

// CreateFormRequest represents a request to create a new form
type CreateFormRequest struct {
	Title       string       `json:"title" binding:"required,min=1,max=200"`
	Description string       `json:"description" binding:"max=2000"`
	Schema      forms.Schema `json:"schema" binding:"required"`
	SheetName   string       `json:"sheetName" binding:"max=100"`
}

// UpdateFormRequest represents a partial update to a form
type UpdateFormRequest struct {
	Title       *string       `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string       `json:"description" binding:"omitempty,max=2000"`
	Schema      *forms.Schema `json:"schema"`
	IsActive    *bool         `json:"isActive"`
	SheetName   *string       `json:"sheetName" binding:"omitempty,max=100"`
}

// FormResponse represents a form in API responses
type FormResponse struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	IsActive    bool            `json:"isActive"`
	Schema      json.RawMessage `json:"schema"`
	SheetName   string          `json:"sheetName,omitempty"`
	OwnerID     uuid.UUID       `json:"ownerId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// FormListFilter represents filter options for the form list
type FormListFilter struct {
	Search   string `form:"search"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// UploadResult is the client-side record of one uploaded file, as returned
// by the upload endpoint and echoed back inside a submission.
type UploadResult struct {
	FieldID  string `json:"fieldId"`
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

// SubmitRequest represents an incoming submission
type SubmitRequest struct {
	FormID uuid.UUID              `json:"formId" binding:"required"`
	Data   map[string]interface{} `json:"data" binding:"required"`
	Files  []UploadResult         `json:"files"`
}

// SubmitResponse is returned on a successful submission
type SubmitResponse struct {
	ID          string    `json:"id"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submittedAt"`
	SheetsRange string    `json:"sheetsRange,omitempty"`
}

// SubmissionResponse represents a stored submission in API responses
type SubmissionResponse struct {
	ID          uuid.UUID              `json:"id"`
	Reference   string                 `json:"reference"`
	FormID      uuid.UUID              `json:"formId"`
	Data        map[string]interface{} `json:"data"`
	Files       []UploadResult         `json:"files,omitempty"`
	SheetsRange string                 `json:"sheetsRange,omitempty"`
	SubmitterID *uuid.UUID             `json:"submitterId,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// SubmissionListFilter represents filter options for the submission list
type SubmissionListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ReferenceDataResponse carries the requested allow-lists
type ReferenceDataResponse struct {
	Employees []forms.Employee `json:"employees,omitempty"`
	Stores    []forms.Store    `json:"stores,omitempty"`
}

// ToFormResponse converts a domain Form to FormResponse
func ToFormResponse(f *forms.Form) *FormResponse {
	return &FormResponse{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		IsActive:    f.IsActive,
		Schema:      json.RawMessage(f.Schema),
		SheetName:   f.SheetName,
		OwnerID:     f.OwnerID,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// ToSubmissionResponse converts a domain Submission to SubmissionResponse
func ToSubmissionResponse(s *forms.Submission) (*SubmissionResponse, error) {
	data, err := s.ParseData()
	if err != nil {
		return nil, err
	}
	domainFiles, err := s.ParseFiles()
	if err != nil {
		return nil, err
	}

	var files []UploadResult
	for _, f := range domainFiles {
		files = append(files, UploadResult{
			FieldID:  f.FieldID,
			URL:      f.URL,
			FileName: f.FileName,
			Size:     f.Size,
			Type:     f.ContentType,
		})
	}

	return &SubmissionResponse{
		ID:          s.ID,
		Reference:   s.Reference,
		FormID:      s.FormID,
		Data:        data,
		Files:       files,
		SheetsRange: s.SheetsRange,
		SubmitterID: s.SubmitterID,
		CreatedAt:   s.CreatedAt,
	}, nil
}

func toDomainFiles(files []UploadResult) []forms.FileUpload {
	if len(files) == 0 {
		return nil
	}
	out := make([]forms.FileUpload, 0, len(files))
	for _, f := range files {
		out = append(out, forms.FileUpload{
			FieldID:     f.FieldID,
			FileName:    f.FileName,
			URL:         f.URL,
			ContentType: f.Type,
			Size:        f.Size,
		})
	}
	return out
}

package forms

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/formhub/backend/internal/domain/shared"
)

// FileUpload records one uploaded file attached to a submission
type FileUpload struct {
	FieldID     string `json:"field_id"`
	FileName    string `json:"file_name"`
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// Submission is one accepted record for a form. Data holds the normalized
// record keyed by field id; Reference is the opaque identifier returned to
// the submitter and is stable across sinks.
type Submission struct {
	shared.BaseEntity
	Reference   string     `json:"reference" gorm:"size:64;not null;uniqueIndex"`
	FormID      uuid.UUID  `json:"form_id" gorm:"type:uuid;not null;index"`
	Data        string     `json:"data" gorm:"type:jsonb;not null"`  // normalized record
	Files       string     `json:"files" gorm:"type:jsonb"`          // uploaded file metadata
	SheetsRange string     `json:"sheets_range" gorm:"size:100"`     // range the sheet row landed in, if any
	SubmitterID *uuid.UUID `json:"submitter_id" gorm:"type:uuid;index"`
}

func (Submission) TableName() string {
	return "submissions"
}

// NewSubmission creates a submission for a form with an already-normalized
// data record
func NewSubmission(formID uuid.UUID, reference string, data map[string]interface{}, files []FileUpload, submitterID *uuid.UUID) (*Submission, error) {
	if formID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUBMISSION", "Submission requires a form")
	}
	if strings.TrimSpace(reference) == "" {
		return nil, shared.NewDomainError("INVALID_SUBMISSION", "Submission reference is required")
	}

	rawData, err := json.Marshal(data)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_SUBMISSION", "Submission data is not serializable")
	}

	rawFiles := "[]"
	if len(files) > 0 {
		b, err := json.Marshal(files)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_SUBMISSION", "File metadata is not serializable")
		}
		rawFiles = string(b)
	}

	return &Submission{
		BaseEntity:  shared.NewBaseEntity(),
		Reference:   reference,
		FormID:      formID,
		Data:        string(rawData),
		Files:       rawFiles,
		SubmitterID: submitterID,
	}, nil
}

// ParseData decodes the persisted normalized record
func (s *Submission) ParseData() (map[string]interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(s.Data), &data); err != nil {
		return nil, shared.NewDomainError("INVALID_SUBMISSION", "Stored submission data is not valid JSON")
	}
	return data, nil
}

// ParseFiles decodes the persisted file metadata list
func (s *Submission) ParseFiles() ([]FileUpload, error) {
	if s.Files == "" {
		return nil, nil
	}
	var files []FileUpload
	if err := json.Unmarshal([]byte(s.Files), &files); err != nil {
		return nil, shared.NewDomainError("INVALID_SUBMISSION", "Stored file metadata is not valid JSON")
	}
	return files, nil
}

// SetSheetsRange records where the spreadsheet sink appended this submission
func (s *Submission) SetSheetsRange(r string) {
	s.SheetsRange = r
	s.Touch()
}

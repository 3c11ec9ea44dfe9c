package forms

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/formhub/backend/internal/domain/shared"
)

// Form is the aggregate root for a user-built form. The schema document is
// persisted as a JSON column and parsed on demand; IsActive gates whether the
// public submission endpoint accepts new records.
type Form struct {
	shared.BaseEntity
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	IsActive    bool      `json:"is_active" gorm:"default:true;index"`
	Schema      string    `json:"schema" gorm:"type:jsonb;not null"` // JSON schema document
	SheetName   string    `json:"sheet_name" gorm:"size:100"`
	OwnerID     uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
}

func (Form) TableName() string {
	return "forms"
}

// NewForm creates a form after validating the title and schema document
func NewForm(title, description string, schema Schema, ownerID uuid.UUID) (*Form, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_FORM", "Form title is required")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FORM", "Form owner is required")
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_SCHEMA", "Schema is not serializable")
	}

	return &Form{
		BaseEntity:  shared.NewBaseEntity(),
		Title:       title,
		Description: strings.TrimSpace(description),
		IsActive:    true,
		Schema:      string(raw),
		OwnerID:     ownerID,
	}, nil
}

// ParseSchema decodes the persisted schema document
func (f *Form) ParseSchema() (*Schema, error) {
	var schema Schema
	if err := json.Unmarshal([]byte(f.Schema), &schema); err != nil {
		return nil, shared.NewDomainError("INVALID_SCHEMA", "Stored schema is not valid JSON")
	}
	return &schema, nil
}

// UpdateSchema replaces the schema document after validating it
func (f *Form) UpdateSchema(schema Schema) error {
	if err := schema.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return shared.NewDomainError("INVALID_SCHEMA", "Schema is not serializable")
	}
	f.Schema = string(raw)
	f.Touch()
	return nil
}

// UpdateDetails applies a partial update to title and description.
// Nil pointers leave the current value unchanged.
func (f *Form) UpdateDetails(title, description *string) error {
	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			return shared.NewDomainError("INVALID_FORM", "Form title cannot be empty")
		}
		f.Title = t
	}
	if description != nil {
		f.Description = strings.TrimSpace(*description)
	}
	f.Touch()
	return nil
}

// SetActive toggles whether the public endpoint accepts submissions
func (f *Form) SetActive(active bool) {
	f.IsActive = active
	f.Touch()
}

// SetSheetDestination configures the spreadsheet tab submissions are
// additionally appended to. An empty name means relational-only persistence.
func (f *Form) SetSheetDestination(name string) {
	f.SheetName = strings.TrimSpace(name)
	f.Touch()
}

// HasSheetDestination reports whether submissions should also be written to
// the spreadsheet sink
func (f *Form) HasSheetDestination() bool {
	return f.SheetName != ""
}

// IsOwnedBy reports whether the given user owns this form
func (f *Form) IsOwnedBy(userID uuid.UUID) bool {
	return f.OwnerID == userID
}

package forms

import (
	"context"

	"github.com/google/uuid"

	"github.com/formhub/backend/internal/domain/shared"
)

// SubmissionRepository defines the interface for submission persistence
type SubmissionRepository interface {
	// FindByID finds a submission by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Submission, error)

	// FindByReference finds a submission by its public reference
	FindByReference(ctx context.Context, reference string) (*Submission, error)

	// FindByForm finds all submissions for a form matching the filter
	FindByForm(ctx context.Context, formID uuid.UUID, filter shared.Filter) ([]Submission, error)

	// Save creates or updates a submission
	Save(ctx context.Context, submission *Submission) error

	// Delete deletes a submission
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByForm counts submissions for a form
	CountByForm(ctx context.Context, formID uuid.UUID) (int64, error)
}

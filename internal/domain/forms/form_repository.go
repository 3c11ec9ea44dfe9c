package forms

import (
	"context"

	"github.com/google/uuid"

	"github.com/formhub/backend/internal/domain/shared"
)

// FormRepository defines the interface for form persistence
type FormRepository interface {
	// FindByID finds a form by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Form, error)

	// FindAll finds all forms matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Form, error)

	// FindByOwner finds all forms owned by a user
	FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]Form, error)

	// Save creates or updates a form
	Save(ctx context.Context, form *Form) error

	// Delete deletes a form and its submissions
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts forms matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

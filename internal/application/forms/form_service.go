package forms

import (
	"context"

	"github.com/google/uuid"

	"github.com/formhub/backend/internal/domain/forms"
	"github.com/formhub/backend/internal/domain/shared"
)

// FormService handles form CRUD. Updates and deletes are gated to the form's
// owner, with an admin override.
type FormService struct {
	formRepo forms.FormRepository
}

// NewFormService creates a new FormService
func NewFormService(formRepo forms.FormRepository) *FormService {
	return &FormService{formRepo: formRepo}
}

// Create creates a new form owned by the caller
func (s *FormService) Create(ctx context.Context, caller Caller, req CreateFormRequest) (*FormResponse, error) {
	form, err := forms.NewForm(req.Title, req.Description, req.Schema, caller.UserID)
	if err != nil {
		return nil, err
	}
	if req.SheetName != "" {
		form.SetSheetDestination(req.SheetName)
	}

	if err := s.formRepo.Save(ctx, form); err != nil {
		return nil, err
	}
	return ToFormResponse(form), nil
}

// GetByID retrieves a form by ID. Reading a form is not gated; the public
// renderer needs the schema before any authentication happens.
func (s *FormService) GetByID(ctx context.Context, id uuid.UUID) (*FormResponse, error) {
	form, err := s.formRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToFormResponse(form), nil
}

// List retrieves forms matching the filter. Admins see every form, other
// callers only their own.
func (s *FormService) List(ctx context.Context, caller Caller, filter FormListFilter) ([]FormResponse, int64, error) {
	domainFilter := shared.Filter{
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if domainFilter.Page == 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize == 0 {
		domainFilter.PageSize = 20
	}
	if filter.IsActive != nil {
		domainFilter.Filters["is_active"] = *filter.IsActive
	}
	if !caller.IsAdmin() {
		domainFilter.Filters["owner_id"] = caller.UserID
	}

	found, err := s.formRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.formRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]FormResponse, 0, len(found))
	for i := range found {
		responses = append(responses, *ToFormResponse(&found[i]))
	}
	return responses, total, nil
}

// Update applies a partial update to a form
func (s *FormService) Update(ctx context.Context, id uuid.UUID, caller Caller, req UpdateFormRequest) (*FormResponse, error) {
	form, err := s.authorizeWrite(ctx, id, caller)
	if err != nil {
		return nil, err
	}

	if req.Title != nil || req.Description != nil {
		if err := form.UpdateDetails(req.Title, req.Description); err != nil {
			return nil, err
		}
	}
	if req.Schema != nil {
		if err := form.UpdateSchema(*req.Schema); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		form.SetActive(*req.IsActive)
	}
	if req.SheetName != nil {
		form.SetSheetDestination(*req.SheetName)
	}

	if err := s.formRepo.Save(ctx, form); err != nil {
		return nil, err
	}
	return ToFormResponse(form), nil
}

// Delete removes a form and all of its submissions
func (s *FormService) Delete(ctx context.Context, id uuid.UUID, caller Caller) error {
	if _, err := s.authorizeWrite(ctx, id, caller); err != nil {
		return err
	}
	return s.formRepo.Delete(ctx, id)
}

func (s *FormService) authorizeWrite(ctx context.Context, id uuid.UUID, caller Caller) (*forms.Form, error) {
	form, err := s.formRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !form.IsOwnedBy(caller.UserID) {
		return nil, shared.ErrForbidden
	}
	return form, nil
}

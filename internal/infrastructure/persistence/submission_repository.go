package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/formhub/backend/internal/domain/forms"
	"github.com/formhub/backend/internal/domain/shared"
)

// GormSubmissionRepository implements SubmissionRepository using GORM
type GormSubmissionRepository struct {
	db *gorm.DB
}

// NewGormSubmissionRepository creates a new GormSubmissionRepository
func NewGormSubmissionRepository(db *gorm.DB) *GormSubmissionRepository {
	return &GormSubmissionRepository{db: db}
}

// FindByID finds a submission by its ID
func (r *GormSubmissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*forms.Submission, error) {
	var submission forms.Submission
	if err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &submission, nil
}

// FindByReference finds a submission by its public reference
func (r *GormSubmissionRepository) FindByReference(ctx context.Context, reference string) (*forms.Submission, error) {
	var submission forms.Submission
	if err := r.db.WithContext(ctx).First(&submission, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &submission, nil
}

// FindByForm finds all submissions for a form matching the filter
func (r *GormSubmissionRepository) FindByForm(ctx context.Context, formID uuid.UUID, filter shared.Filter) ([]forms.Submission, error) {
	var result []forms.Submission
	query := r.db.WithContext(ctx).Model(&forms.Submission{}).Where("form_id = ?", formID)

	if submitterID, ok := filter.Filters["submitter_id"]; ok {
		query = query.Where("submitter_id = ?", submitterID)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		// Newest first matches how submissions are reviewed
		query = query.Order("created_at DESC")
	}

	if err := query.Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// Save creates or updates a submission
func (r *GormSubmissionRepository) Save(ctx context.Context, submission *forms.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

// Delete deletes a submission
func (r *GormSubmissionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&forms.Submission{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByForm counts submissions for a form
func (r *GormSubmissionRepository) CountByForm(ctx context.Context, formID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&forms.Submission{}).
		Where("form_id = ?", formID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormSubmissionRepository implements SubmissionRepository
var _ forms.SubmissionRepository = (*GormSubmissionRepository)(nil)

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

// GormFormRepository implements FormRepository using GORM
type GormFormRepository struct {
	db *gorm.DB
}

// NewGormFormRepository creates a new GormFormRepository
func NewGormFormRepository(db *gorm.DB) *GormFormRepository {
	return &GormFormRepository{db: db}
}

// FindByID finds a form by its ID
func (r *GormFormRepository) FindByID(ctx context.Context, id uuid.UUID) (*forms.Form, error) {
	var form forms.Form
	if err := r.db.WithContext(ctx).First(&form, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &form, nil
}

// FindAll finds all forms matching the filter
func (r *GormFormRepository) FindAll(ctx context.Context, filter shared.Filter) ([]forms.Form, error) {
	var result []forms.Form
	query := r.applyFilter(r.db.WithContext(ctx).Model(&forms.Form{}), filter)

	if err := query.Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// FindByOwner finds all forms owned by a user
func (r *GormFormRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]forms.Form, error) {
	var result []forms.Form
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&forms.Form{}).Where("owner_id = ?", ownerID), filter)

	if err := query.Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// Save creates or updates a form
func (r *GormFormRepository) Save(ctx context.Context, form *forms.Form) error {
	return r.db.WithContext(ctx).Save(form).Error
}

// Delete deletes a form and its submissions
func (r *GormFormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&forms.Submission{}, "form_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&forms.Form{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts forms matching the filter
func (r *GormFormRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&forms.Form{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormFormRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

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
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormFormRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "owner_id":
			query = query.Where("owner_id = ?", value)
		}
	}

	return query
}

// Ensure GormFormRepository implements FormRepository
var _ forms.FormRepository = (*GormFormRepository)(nil)

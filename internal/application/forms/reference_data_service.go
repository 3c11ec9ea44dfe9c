package forms

import (
	"context"
	"fmt"

	"github.com/formhub/backend/internal/domain/forms"
	"github.com/formhub/backend/internal/domain/shared"
)

// ReferenceDataService exposes the spreadsheet allow-lists to the API. Each
// call re-reads the upstream; there is no cache to go stale.
type ReferenceDataService struct {
	gateway forms.ReferenceDataGateway
}

// NewReferenceDataService creates a ReferenceDataService. A nil gateway means
// the feature is unconfigured and every fetch fails with a configuration
// error rather than an empty list.
func NewReferenceDataService(gateway forms.ReferenceDataGateway) *ReferenceDataService {
	return &ReferenceDataService{gateway: gateway}
}

// Fetch loads the requested allow-lists. Lists that were not asked for stay
// empty so callers do not pay for upstream reads they do not need.
func (s *ReferenceDataService) Fetch(ctx context.Context, needEmployees, needStores bool) (*ReferenceDataResponse, error) {
	if !needEmployees && !needStores {
		return &ReferenceDataResponse{}, nil
	}
	if s.gateway == nil {
		return nil, shared.ErrConfiguration
	}

	resp := &ReferenceDataResponse{}
	if needEmployees {
		employees, err := s.gateway.Employees(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch employees: %w", err)
		}
		resp.Employees = employees
	}
	if needStores {
		stores, err := s.gateway.Stores(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch stores: %w", err)
		}
		resp.Stores = stores
	}
	return resp, nil
}

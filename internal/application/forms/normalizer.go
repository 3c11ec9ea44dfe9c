package forms

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/formhub/backend/internal/domain/forms"
	"github.com/formhub/backend/internal/domain/shared"
)

// Field keys the normalizer constrains. Employee and store values are checked
// against the spreadsheet allow-lists; notes only gets trimmed and capped.
const (
	employeeFieldKey = "employee_name"
	storeFieldKey    = "store_location"
	notesFieldKey    = "notes"
)

// Normalizer cleans up a submission record before it is written. Allow-list
// checks run only when the record carries the constrained keys, so forms
// without employee or store fields never touch the reference-data source.
type Normalizer struct {
	gateway  forms.ReferenceDataGateway
	maxNotes int
}

// NewNormalizer creates a Normalizer. The gateway may be nil when reference
// data is not configured; records carrying constrained keys then fail with a
// configuration error instead of passing unchecked.
func NewNormalizer(gateway forms.ReferenceDataGateway, maxNotes int) *Normalizer {
	if maxNotes <= 0 {
		maxNotes = 200
	}
	return &Normalizer{gateway: gateway, maxNotes: maxNotes}
}

// Normalize returns a copy of the record with constrained values trimmed and
// verified. The stored value is always the trimmed original, never the
// canonical allow-list form.
func (n *Normalizer) Normalize(ctx context.Context, data map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}

	if raw, ok := out[notesFieldKey]; ok && raw != nil {
		notes, ok := raw.(string)
		if !ok {
			return nil, fieldError(notesFieldKey, "Notes must be text")
		}
		trimmed := strings.TrimSpace(notes)
		// The ceiling counts characters, not bytes
		if utf8.RuneCountInString(trimmed) > n.maxNotes {
			return nil, fieldError(notesFieldKey, fmt.Sprintf("Notes must be at most %d characters", n.maxNotes))
		}
		out[notesFieldKey] = trimmed
	}

	needEmployee := hasValue(out, employeeFieldKey)
	needStore := hasValue(out, storeFieldKey)
	if !needEmployee && !needStore {
		return out, nil
	}
	if n.gateway == nil {
		return nil, shared.ErrConfiguration
	}

	if needEmployee {
		trimmed, err := n.checkEmployee(ctx, out[employeeFieldKey])
		if err != nil {
			return nil, err
		}
		out[employeeFieldKey] = trimmed
	}
	if needStore {
		trimmed, err := n.checkStore(ctx, out[storeFieldKey])
		if err != nil {
			return nil, err
		}
		out[storeFieldKey] = trimmed
	}
	return out, nil
}

func (n *Normalizer) checkEmployee(ctx context.Context, raw interface{}) (string, error) {
	value, ok := raw.(string)
	if !ok {
		return "", fieldError(employeeFieldKey, "Employee name must be text")
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fieldError(employeeFieldKey, "Employee name is required")
	}

	employees, err := n.gateway.Employees(ctx)
	if err != nil {
		// Both chains stay intact: callers map ErrReferenceLookup to a 500
		// and a deadline expiry inside the fetch to a 408.
		return "", fmt.Errorf("%w: %w", ErrReferenceLookup, err)
	}
	if !forms.EmployeeAllowList(employees).Contains(trimmed) {
		return "", fieldError(employeeFieldKey, fmt.Sprintf("Employee name %q is not on the allowed list", trimmed))
	}
	return trimmed, nil
}

func (n *Normalizer) checkStore(ctx context.Context, raw interface{}) (string, error) {
	value, ok := raw.(string)
	if !ok {
		return "", fieldError(storeFieldKey, "Store location must be text")
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fieldError(storeFieldKey, "Store location is required")
	}

	stores, err := n.gateway.Stores(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReferenceLookup, err)
	}
	if !forms.StoreAllowList(stores).Contains(trimmed) {
		return "", fieldError(storeFieldKey, fmt.Sprintf("Store %q is not on the allowed list", trimmed))
	}
	return trimmed, nil
}

func hasValue(data map[string]interface{}, key string) bool {
	v, ok := data[key]
	return ok && v != nil
}

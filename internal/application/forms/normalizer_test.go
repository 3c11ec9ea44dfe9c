package forms

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formhub/backend/internal/domain/forms"
	"github.com/formhub/backend/internal/domain/shared"
)

// mockReferenceDataGateway is a mock implementation of ReferenceDataGateway
type mockReferenceDataGateway struct {
	employees     []forms.Employee
	stores        []forms.Store
	err           error
	employeeCalls int
	storeCalls    int
}

func (m *mockReferenceDataGateway) Employees(_ context.Context) ([]forms.Employee, error) {
	m.employeeCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.employees, nil
}

func (m *mockReferenceDataGateway) Stores(_ context.Context) ([]forms.Store, error) {
	m.storeCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.stores, nil
}

func auditGateway() *mockReferenceDataGateway {
	return &mockReferenceDataGateway{
		employees: []forms.Employee{{Name: "Jane Doe"}, {Name: "John Smith"}},
		stores: []forms.Store{
			{Name: "Store A", Location: "Jakarta"},
			{Name: "Store B"},
		},
	}
}

func TestNormalizerEmployee(t *testing.T) {
	t.Run("accepts case and spacing variants, stores trimmed original", func(t *testing.T) {
		for _, input := range []string{"jane doe", " Jane   Doe ", "JANE DOE"} {
			out, err := NewNormalizer(auditGateway(), 0).Normalize(context.Background(), map[string]interface{}{
				"employee_name": input,
			})
			require.NoError(t, err, "input %q", input)
			assert.Equal(t, strings.TrimSpace(input), out["employee_name"], "input %q", input)
		}
	})

	t.Run("rejects names not on the allow-list", func(t *testing.T) {
		_, err := NewNormalizer(auditGateway(), 0).Normalize(context.Background(), map[string]interface{}{
			"employee_name": "Nobody Here",
		})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Len(t, vErr.Fields, 1)
		assert.Equal(t, "employee_name", vErr.Fields[0].Field)
		assert.Contains(t, strings.ToLower(vErr.Fields[0].Message), "employee")
	})

	t.Run("rejects empty and non-string values", func(t *testing.T) {
		_, err := NewNormalizer(auditGateway(), 0).Normalize(context.Background(), map[string]interface{}{
			"employee_name": "   ",
		})
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)

		_, err = NewNormalizer(auditGateway(), 0).Normalize(context.Background(), map[string]interface{}{
			"employee_name": 42,
		})
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestNormalizerStore(t *testing.T) {
	n := func() *Normalizer { return NewNormalizer(auditGateway(), 0) }

	t.Run("accepts bare name and combined form", func(t *testing.T) {
		for _, input := range []string{"Store A", "Store A - Jakarta", "store a - jakarta", "STORE B"} {
			out, err := n().Normalize(context.Background(), map[string]interface{}{
				"store_location": input,
			})
			require.NoError(t, err, "input %q", input)
			assert.Equal(t, input, out["store_location"])
		}
	})

	t.Run("rejects a wrong location for a known name", func(t *testing.T) {
		_, err := n().Normalize(context.Background(), map[string]interface{}{
			"store_location": "Store A - Bandung",
		})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, strings.ToLower(vErr.Fields[0].Message), "store")
	})
}

func TestNormalizerNotes(t *testing.T) {
	t.Run("trims and accepts exactly the limit", func(t *testing.T) {
		notes := strings.Repeat("x", 200)
		out, err := NewNormalizer(auditGateway(), 200).Normalize(context.Background(), map[string]interface{}{
			"notes": "  " + notes + "  ",
		})
		require.NoError(t, err)
		assert.Equal(t, notes, out["notes"])
	})

	t.Run("counts characters, not bytes", func(t *testing.T) {
		notes := strings.Repeat("é", 150)
		out, err := NewNormalizer(auditGateway(), 200).Normalize(context.Background(), map[string]interface{}{
			"notes": notes,
		})
		require.NoError(t, err)
		assert.Equal(t, notes, out["notes"])

		out, err = NewNormalizer(auditGateway(), 200).Normalize(context.Background(), map[string]interface{}{
			"notes": strings.Repeat("漢", 200),
		})
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("漢", 200), out["notes"])

		_, err = NewNormalizer(auditGateway(), 200).Normalize(context.Background(), map[string]interface{}{
			"notes": strings.Repeat("é", 201),
		})
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("rejects one character over the limit", func(t *testing.T) {
		_, err := NewNormalizer(auditGateway(), 200).Normalize(context.Background(), map[string]interface{}{
			"notes": strings.Repeat("x", 201),
		})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "notes", vErr.Fields[0].Field)
	})

	t.Run("rejects non-string notes", func(t *testing.T) {
		_, err := NewNormalizer(auditGateway(), 200).Normalize(context.Background(), map[string]interface{}{
			"notes": 12,
		})
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestNormalizerGateway(t *testing.T) {
	t.Run("unconstrained records never touch the gateway", func(t *testing.T) {
		gateway := auditGateway()
		out, err := NewNormalizer(gateway, 0).Normalize(context.Background(), map[string]interface{}{
			"audit_date": "2026-08-28",
			"visibility": "good",
		})
		require.NoError(t, err)
		assert.Equal(t, "2026-08-28", out["audit_date"])
		assert.Zero(t, gateway.employeeCalls)
		assert.Zero(t, gateway.storeCalls)
	})

	t.Run("only the needed list is fetched", func(t *testing.T) {
		gateway := auditGateway()
		_, err := NewNormalizer(gateway, 0).Normalize(context.Background(), map[string]interface{}{
			"employee_name": "Jane Doe",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, gateway.employeeCalls)
		assert.Zero(t, gateway.storeCalls)
	})

	t.Run("gateway failure is a lookup error, not a validation error", func(t *testing.T) {
		gateway := &mockReferenceDataGateway{err: errors.New("api unreachable")}
		_, err := NewNormalizer(gateway, 0).Normalize(context.Background(), map[string]interface{}{
			"employee_name": "Jane Doe",
		})
		assert.ErrorIs(t, err, ErrReferenceLookup)
		var vErr *ValidationError
		assert.False(t, errors.As(err, &vErr))
	})

	t.Run("deadline expiry during the fetch stays visible in the chain", func(t *testing.T) {
		gateway := &mockReferenceDataGateway{err: context.DeadlineExceeded}
		_, err := NewNormalizer(gateway, 0).Normalize(context.Background(), map[string]interface{}{
			"employee_name": "Jane Doe",
		})
		assert.ErrorIs(t, err, ErrReferenceLookup)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("missing gateway is a configuration error", func(t *testing.T) {
		_, err := NewNormalizer(nil, 0).Normalize(context.Background(), map[string]interface{}{
			"store_location": "Store A",
		})
		assert.ErrorIs(t, err, shared.ErrConfiguration)
	})

	t.Run("input map is not mutated", func(t *testing.T) {
		in := map[string]interface{}{"employee_name": "  Jane Doe  "}
		_, err := NewNormalizer(auditGateway(), 0).Normalize(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, "  Jane Doe  ", in["employee_name"])
	})
}

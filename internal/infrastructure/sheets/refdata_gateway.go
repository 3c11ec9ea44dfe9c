package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/formhub/backend/internal/domain/forms"
	infraconfig "github.com/formhub/backend/internal/infrastructure/config"
)

// ReferenceDataGateway reads the employee and store allow-lists from two tabs
// of the configured spreadsheet. Every call hits the API so spreadsheet edits
// take effect on the next submission.
type ReferenceDataGateway struct {
	client         *Client
	employeesSheet string
	storesSheet    string
}

// Ensure ReferenceDataGateway implements the domain gateway
var _ forms.ReferenceDataGateway = (*ReferenceDataGateway)(nil)

// NewReferenceDataGateway creates a gateway over the given client
func NewReferenceDataGateway(client *Client, cfg *infraconfig.SheetsConfig) *ReferenceDataGateway {
	return &ReferenceDataGateway{
		client:         client,
		employeesSheet: cfg.EmployeesSheet,
		storesSheet:    cfg.StoresSheet,
	}
}

// Employees returns the employee allow-list from column A of the employees
// tab, skipping the header row.
func (g *ReferenceDataGateway) Employees(ctx context.Context) ([]forms.Employee, error) {
	rows, err := g.client.Values(ctx, dataRange(g.employeesSheet, "A"))
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	return EmployeesFromRows(rows), nil
}

// Stores returns the store allow-list from columns A and B of the stores tab,
// skipping the header row.
func (g *ReferenceDataGateway) Stores(ctx context.Context) ([]forms.Store, error) {
	rows, err := g.client.Values(ctx, dataRange(g.storesSheet, "B"))
	if err != nil {
		return nil, fmt.Errorf("failed to load stores: %w", err)
	}
	return StoresFromRows(rows), nil
}

// dataRange covers columns A through lastColumn starting below the header
func dataRange(sheetName, lastColumn string) string {
	return "'" + strings.ReplaceAll(sheetName, "'", "''") + "'!A2:" + lastColumn
}

// EmployeesFromRows maps raw sheet rows to employees, dropping blank cells.
func EmployeesFromRows(rows [][]interface{}) []forms.Employee {
	employees := make([]forms.Employee, 0, len(rows))
	for _, row := range rows {
		name := cellString(row, 0)
		if name == "" {
			continue
		}
		employees = append(employees, forms.Employee{Name: name})
	}
	return employees
}

// StoresFromRows maps raw sheet rows to stores. Column A is the name, column
// B the optional location.
func StoresFromRows(rows [][]interface{}) []forms.Store {
	stores := make([]forms.Store, 0, len(rows))
	for _, row := range rows {
		name := cellString(row, 0)
		if name == "" {
			continue
		}
		stores = append(stores, forms.Store{
			Name:     name,
			Location: cellString(row, 1),
		})
	}
	return stores
}

func cellString(row []interface{}, idx int) string {
	if idx >= len(row) {
		return ""
	}
	s, ok := row[idx].(string)
	if !ok {
		s = fmt.Sprint(row[idx])
	}
	return strings.TrimSpace(s)
}

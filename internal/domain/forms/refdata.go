package forms

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
)

// Employee is one entry of the employee allow-list
type Employee struct {
	Name string `json:"name"`
}

// Store is one entry of the store allow-list. Location is optional; when
// present, the combined "Name - Location" form is also a valid input.
type Store struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// ReferenceDataGateway fetches the current allow-lists from the external
// spreadsheet-backed source. Implementations must not cache; every call
// re-reads the upstream so edits take effect immediately. An absent upstream
// tab or missing configuration is an error, never an empty list.
type ReferenceDataGateway interface {
	Employees(ctx context.Context) ([]Employee, error)
	Stores(ctx context.Context) ([]Store, error)
}

var foldCaser = cases.Fold()

// NormalizeKey derives the comparison key for allow-list matching: leading
// and trailing whitespace is trimmed, internal whitespace runs collapse to a
// single space, and the result is case-folded. Storage keeps the original
// trimmed value; only comparisons use the key.
func NormalizeKey(s string) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	return foldCaser.String(collapsed)
}

// AllowList is a set of permitted values matched by normalized key
type AllowList struct {
	entries map[string]string
	order   []string
}

// NewAllowList builds an allow-list from the given values. Blank values are
// skipped; later duplicates (by normalized key) do not replace earlier ones.
func NewAllowList(values ...string) *AllowList {
	l := &AllowList{entries: make(map[string]string, len(values))}
	for _, v := range values {
		l.Add(v)
	}
	return l
}

// Add inserts a value, keeping the trimmed original as the canonical form
func (l *AllowList) Add(value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return
	}
	key := NormalizeKey(trimmed)
	if _, exists := l.entries[key]; exists {
		return
	}
	l.entries[key] = trimmed
	l.order = append(l.order, key)
}

// Contains reports whether the value matches an entry by normalized key
func (l *AllowList) Contains(value string) bool {
	_, ok := l.entries[NormalizeKey(value)]
	return ok
}

// Match returns the canonical stored form for a value, if present
func (l *AllowList) Match(value string) (string, bool) {
	canonical, ok := l.entries[NormalizeKey(value)]
	return canonical, ok
}

// Values returns the canonical entries in insertion order
func (l *AllowList) Values() []string {
	out := make([]string, 0, len(l.order))
	for _, key := range l.order {
		out = append(out, l.entries[key])
	}
	return out
}

// Len returns the number of distinct entries
func (l *AllowList) Len() int {
	return len(l.entries)
}

// EmployeeAllowList builds the allow-list of valid employee names
func EmployeeAllowList(employees []Employee) *AllowList {
	l := NewAllowList()
	for _, e := range employees {
		l.Add(e.Name)
	}
	return l
}

// StoreAllowList builds the allow-list of valid store identifiers. Each store
// is accepted both as its bare name and as "Name - Location" when a location
// is present, since the UI offers both renderings.
func StoreAllowList(stores []Store) *AllowList {
	l := NewAllowList()
	for _, s := range stores {
		l.Add(s.Name)
		if strings.TrimSpace(s.Location) != "" {
			l.Add(strings.TrimSpace(s.Name) + " - " + strings.TrimSpace(s.Location))
		}
	}
	return l
}

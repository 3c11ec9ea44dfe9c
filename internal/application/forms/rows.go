package forms

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/formhub/backend/internal/domain/forms"
)

// AuditRowHeader is the fixed header row written when a sheet tab is created.
// Data rows follow the same column order; changing it breaks every sheet
// already written.
var AuditRowHeader = []string{
	"Timestamp",
	"Audit Date",
	"Employee Name",
	"Store Location",
	"Before Image",
	"After Image",
	"Visibility",
	"Out of Stock",
	"Notes",
	"Form Title",
	"Form ID",
}

// RowBuilder maps a normalized submission record onto the audit row layout.
type RowBuilder struct {
	loc *time.Location
}

// NewRowBuilder creates a RowBuilder writing timestamps in the given IANA
// zone. The zone is fixed server-side so rows sort consistently no matter
// where the submitter is.
func NewRowBuilder(timezone string) (*RowBuilder, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid sheet timezone %q: %w", timezone, err)
	}
	return &RowBuilder{loc: loc}, nil
}

// AuditRow builds the data row for one submission
func (b *RowBuilder) AuditRow(form *forms.Form, data map[string]interface{}, now time.Time) []interface{} {
	return []interface{}{
		now.In(b.loc).Format("2006-01-02 15:04:05"),
		stringValue(data["audit_date"]),
		stringValue(data[employeeFieldKey]),
		stringValue(data[storeFieldKey]),
		FlattenFileURL(data["before_image"]),
		FlattenFileURL(data["after_image"]),
		stringValue(data["visibility"]),
		joinList(data["out_of_stock"]),
		stringValue(data[notesFieldKey]),
		form.Title,
		form.ID.String(),
	}
}

// FlattenFileURL reduces the various shapes a file-valued field arrives in
// to a single URL string. Unrecognized shapes flatten to "".
func FlattenFileURL(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []interface{}:
		if len(val) == 0 {
			return ""
		}
		return FlattenFileURL(val[0])
	case map[string]interface{}:
		if url, ok := val["url"].(string); ok {
			return url
		}
		return ""
	default:
		return ""
	}
}

// joinList renders a multi-select value as a comma-separated cell
func joinList(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := stringValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

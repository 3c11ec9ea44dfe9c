package forms

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/formhub/backend/internal/domain/shared"
)

// FieldType identifies the kind of input a field definition describes
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeFile     FieldType = "file"
	FieldTypeDate     FieldType = "date"
	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
)

// IsValid returns true if the field type is one of the supported types
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeSelect, FieldTypeCheckbox,
		FieldTypeRadio, FieldTypeFile, FieldTypeDate, FieldTypeEmail, FieldTypeNumber:
		return true
	}
	return false
}

// NeedsOptions returns true if the field type requires an options list
func (t FieldType) NeedsOptions() bool {
	return t == FieldTypeSelect || t == FieldTypeRadio
}

// FieldOption is one selectable choice of a select/radio/checkbox field.
// On the wire it is either a bare string or, for checkbox groups that carry
// helper text, an object with value/label/helperText keys. Both forms decode
// into this struct; the marshaled form round-trips whichever variant was used.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
	Help  string `json:"helperText,omitempty"`
}

// UnmarshalJSON accepts both the plain-string and the rich-object option forms
func (o *FieldOption) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = FieldOption{Value: s}
		return nil
	}

	type optionObject FieldOption
	var obj optionObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*o = FieldOption(obj)
	return nil
}

// MarshalJSON emits the plain-string form when no rich attributes are set
func (o FieldOption) MarshalJSON() ([]byte, error) {
	if o.Label == "" && o.Help == "" {
		return json.Marshal(o.Value)
	}
	type optionObject FieldOption
	return json.Marshal(optionObject(o))
}

// FieldValidation holds declared numeric/pattern constraints.
// These are carried through the schema document for renderers; the generic
// record validator does not enforce them.
type FieldValidation struct {
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Pattern string   `json:"pattern,omitempty"`
}

// FieldDefinition declaratively describes one form input
type FieldDefinition struct {
	ID          string           `json:"id"`
	Type        FieldType        `json:"type"`
	Label       string           `json:"label"`
	Placeholder string           `json:"placeholder,omitempty"`
	Required    bool             `json:"required,omitempty"`
	Multiple    bool             `json:"multiple,omitempty"`
	Options     []FieldOption    `json:"options,omitempty"`
	Validation  *FieldValidation `json:"validation,omitempty"`
}

// SchemaSettings holds form-level presentation and submission settings
type SchemaSettings struct {
	AllowMultipleSubmissions bool `json:"allowMultipleSubmissions,omitempty"`
	RequireAuth              bool `json:"requireAuth,omitempty"`
	ShowProgressBar          bool `json:"showProgressBar,omitempty"`
}

// Schema is the persisted form schema document: an ordered field list plus
// settings. Field order is display order and is semantically meaningful.
type Schema struct {
	Fields   []FieldDefinition `json:"fields"`
	Settings *SchemaSettings   `json:"settings,omitempty"`
}

// Field returns the field definition with the given id, or nil
func (s *Schema) Field(id string) *FieldDefinition {
	for i := range s.Fields {
		if s.Fields[i].ID == id {
			return &s.Fields[i]
		}
	}
	return nil
}

// Validate checks the schema's structural invariants. A failure here is a
// configuration error surfaced at schema-load time, never a submission-time
// user error.
func (s *Schema) Validate() error {
	seen := make(map[string]bool, len(s.Fields))
	for i, f := range s.Fields {
		if strings.TrimSpace(f.ID) == "" {
			return shared.NewDomainError("INVALID_SCHEMA",
				fmt.Sprintf("Field at position %d is missing an id", i))
		}
		if strings.TrimSpace(f.Label) == "" {
			return shared.NewDomainError("INVALID_SCHEMA",
				fmt.Sprintf("Field %q is missing a label", f.ID))
		}
		if !f.Type.IsValid() {
			return shared.NewDomainError("INVALID_SCHEMA",
				fmt.Sprintf("Field %q has unsupported type %q", f.ID, f.Type))
		}
		if seen[f.ID] {
			return shared.NewDomainError("INVALID_SCHEMA",
				fmt.Sprintf("Duplicate field id %q", f.ID))
		}
		seen[f.ID] = true

		if f.Type.NeedsOptions() && len(f.Options) == 0 {
			return shared.NewDomainError("INVALID_SCHEMA",
				fmt.Sprintf("Field %q of type %s requires options", f.ID, f.Type))
		}
	}
	return nil
}

// FieldError reports a single failed field of a candidate record
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateRecord validates a candidate record (map of field id to value)
// against the schema. Fields are validated independently; the result carries
// at most one error per failing field, in schema order, with unknown keys
// reported last. An empty result means the record is valid.
func (s *Schema) ValidateRecord(data map[string]interface{}) []FieldError {
	var errs []FieldError

	for _, f := range s.Fields {
		value, present := data[f.ID]
		if msg := validateFieldValue(f, value, present); msg != "" {
			errs = append(errs, FieldError{Field: f.ID, Message: msg})
		}
	}

	// Reject keys that do not correspond to any field definition.
	var unknown []string
	for key := range data {
		if s.Field(key) == nil {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		errs = append(errs, FieldError{Field: key, Message: "Unknown field"})
	}

	return errs
}

// validateFieldValue applies the per-type rule for one field and returns an
// error message, or "" when the value is acceptable
func validateFieldValue(f FieldDefinition, value interface{}, present bool) string {
	switch f.Type {
	case FieldTypeCheckbox:
		if f.Multiple {
			items, ok := toStringSlice(value)
			if present && !ok {
				return "Must be a list of selected values"
			}
			if f.Required && len(items) == 0 {
				return "Select at least one option"
			}
			return ""
		}
		checked, ok := toBool(value)
		if present && !ok {
			return "Must be true or false"
		}
		if f.Required && !checked {
			return "This field must be checked"
		}
		return ""

	case FieldTypeFile:
		if f.Required && !hasFileValue(value) {
			return "A file is required"
		}
		return ""

	case FieldTypeNumber:
		str, isStr := asString(value)
		if present && value != nil {
			if _, ok := toNumber(value); !ok {
				return "Must be a number"
			}
		}
		if f.Required && (!present || value == nil || (isStr && strings.TrimSpace(str) == "")) {
			return "This field is required"
		}
		return ""

	case FieldTypeEmail:
		str, _ := asString(value)
		str = strings.TrimSpace(str)
		if str != "" && !emailPattern.MatchString(str) {
			return "Must be a valid email address"
		}
		if f.Required && str == "" {
			return "This field is required"
		}
		return ""

	default:
		// text, textarea, select, radio, date: optional pass-through strings
		str, ok := asString(value)
		if present && value != nil && !ok {
			return "Must be a string"
		}
		if f.Required && strings.TrimSpace(str) == "" {
			return "This field is required"
		}
		return ""
	}
}

// hasFileValue reports whether a file field carries a usable value in any of
// the accepted upload shapes (bare URL string, upload-result list, object)
func hasFileValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	}
	return false
}

func asString(value interface{}) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

func toBool(value interface{}) (bool, bool) {
	b, ok := value.(bool)
	return b, ok
}

func toNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func toStringSlice(value interface{}) ([]string, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case []string:
		return v, true
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			items = append(items, s)
		}
		return items, true
	}
	return nil, false
}

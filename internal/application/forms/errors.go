package forms

import (
	"strings"

	"github.com/formhub/backend/internal/domain/forms"
	"github.com/formhub/backend/internal/domain/shared"
)

// Application-level submission errors
var (
	ErrFormInactive      = shared.NewDomainError("FORM_INACTIVE", "This form is not accepting submissions")
	ErrReferenceLookup   = shared.NewDomainError("REFERENCE_LOOKUP_FAILED", "Failed to validate against reference data")
	ErrSubmissionTimeout = shared.NewDomainError("SUBMISSION_TIMEOUT", "Submission took too long to process")
)

// ValidationError aggregates per-field validation failures for one record
type ValidationError struct {
	Fields []forms.FieldError
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return strings.Join(msgs, "; ")
}

func fieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: []forms.FieldError{{Field: field, Message: message}}}
}

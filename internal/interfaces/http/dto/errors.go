package dto

import "net/http"

// Error codes returned by the API. The application and domain layers emit
// the same strings, so handlers can pass them through unchanged.
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeInvalidState  = "INVALID_STATE"
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
	ErrCodeUpstream      = "UPSTREAM_ERROR"
	ErrCodeInternal      = "INTERNAL_ERROR"

	ErrCodeFormInactive      = "FORM_INACTIVE"
	ErrCodeInvalidSchema     = "INVALID_SCHEMA"
	ErrCodeSheetNotFound     = "SHEET_NOT_FOUND"
	ErrCodeReferenceLookup   = "REFERENCE_LOOKUP_FAILED"
	ErrCodeSubmissionTimeout = "SUBMISSION_TIMEOUT"
	ErrCodeRequestTooLarge   = "REQUEST_TOO_LARGE"

	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeAccountInactive    = "ACCOUNT_INACTIVE"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeTokenRevoked       = "TOKEN_REVOKED"
	ErrCodeTokenError         = "TOKEN_ERROR"
	ErrCodeInvalidRole        = "INVALID_ROLE"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:    http.StatusBadRequest,
	ErrCodeInvalidInput:  http.StatusBadRequest,
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeUnauthorized:  http.StatusUnauthorized,
	ErrCodeForbidden:     http.StatusForbidden,
	ErrCodeInvalidState:  http.StatusConflict,
	ErrCodeConfiguration: http.StatusInternalServerError,
	ErrCodeUpstream:      http.StatusInternalServerError,
	ErrCodeInternal:      http.StatusInternalServerError,

	ErrCodeFormInactive:      http.StatusBadRequest,
	ErrCodeInvalidSchema:     http.StatusBadRequest,
	ErrCodeSheetNotFound:     http.StatusNotFound,
	ErrCodeReferenceLookup:   http.StatusInternalServerError,
	ErrCodeSubmissionTimeout: http.StatusRequestTimeout,
	ErrCodeRequestTooLarge:   http.StatusRequestEntityTooLarge,

	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountInactive:    http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeTokenError:         http.StatusUnauthorized,
	ErrCodeInvalidRole:        http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for an error code. Unknown codes
// fall back to 500 so a new code never silently turns into a 200.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

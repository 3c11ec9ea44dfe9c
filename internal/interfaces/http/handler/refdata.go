package handler

import (
	"github.com/gin-gonic/gin"

	formsapp "github.com/formhub/backend/internal/application/forms"
)

// ReferenceDataHandler serves the spreadsheet-backed allow-lists
type ReferenceDataHandler struct {
	BaseHandler
	referenceDataService *formsapp.ReferenceDataService
}

// NewReferenceDataHandler creates a new reference data handler
func NewReferenceDataHandler(referenceDataService *formsapp.ReferenceDataService) *ReferenceDataHandler {
	return &ReferenceDataHandler{referenceDataService: referenceDataService}
}

// Get returns the requested allow-lists. The "type" query parameter selects
// employees, stores, or both; it defaults to both.
func (h *ReferenceDataHandler) Get(c *gin.Context) {
	needEmployees, needStores := true, true
	switch c.DefaultQuery("type", "both") {
	case "employees":
		needStores = false
	case "stores":
		needEmployees = false
	case "both":
	default:
		h.BadRequest(c, "type must be one of: employees, stores, both")
		return
	}

	data, err := h.referenceDataService.Fetch(c.Request.Context(), needEmployees, needStores)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, data)
}

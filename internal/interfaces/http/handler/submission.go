package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	formsapp "github.com/formhub/backend/internal/application/forms"
	"github.com/formhub/backend/internal/interfaces/http/middleware"
)

// SubmissionHandler handles submission HTTP requests
type SubmissionHandler struct {
	BaseHandler
	submissionService *formsapp.SubmissionService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionService *formsapp.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// Submit accepts a form submission. The endpoint is public; when the
// caller presented a valid token the submission is attributed to them.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req formsapp.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	var submitterID *uuid.UUID
	if idStr := middleware.GetJWTUserID(c); idStr != "" {
		if id, err := uuid.Parse(idStr); err == nil {
			submitterID = &id
		}
	}

	result, err := h.submissionService.Submit(c.Request.Context(), req, submitterID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ListByForm returns the submissions of a form visible to the caller
func (h *SubmissionHandler) ListByForm(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	formID, err := uuid.Parse(c.Query("formId"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing formId")
		return
	}

	var filter formsapp.SubmissionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.bindError(c, err)
		return
	}

	submissions, err := h.submissionService.ListByForm(c.Request.Context(), formID, caller, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, submissions)
}

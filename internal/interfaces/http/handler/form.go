package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	formsapp "github.com/formhub/backend/internal/application/forms"
)

// FormHandler handles form management HTTP requests
type FormHandler struct {
	BaseHandler
	formService *formsapp.FormService
}

// NewFormHandler creates a new form handler
func NewFormHandler(formService *formsapp.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

// Create creates a new form owned by the caller
func (h *FormHandler) Create(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req formsapp.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	form, err := h.formService.Create(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, form)
}

// GetByID returns a single form with its schema. This endpoint is public
// so the renderer can load a form before the visitor authenticates.
func (h *FormHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid form ID")
		return
	}

	form, err := h.formService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, form)
}

// List returns the caller's forms, or every form for admins
func (h *FormHandler) List(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter formsapp.FormListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.bindError(c, err)
		return
	}

	forms, total, err := h.formService.List(c.Request.Context(), caller, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := filter.Page
	if page == 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize == 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, forms, total, page, pageSize)
}

// Update applies a partial update to a form
func (h *FormHandler) Update(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid form ID")
		return
	}

	var req formsapp.UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	form, err := h.formService.Update(c.Request.Context(), id, caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, form)
}

// Delete removes a form and its submissions
func (h *FormHandler) Delete(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid form ID")
		return
	}

	if err := h.formService.Delete(c.Request.Context(), id, caller); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

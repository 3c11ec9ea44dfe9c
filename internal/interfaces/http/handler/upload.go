package handler

import (
	"github.com/gin-gonic/gin"

	formsapp "github.com/formhub/backend/internal/application/forms"
)

// UploadHandler handles submission image uploads
type UploadHandler struct {
	BaseHandler
	uploadService *formsapp.UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService *formsapp.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// Upload accepts one multipart file upload and returns its public URL.
// The "fieldId" form value names the form field the file belongs to.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file in multipart request")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Unable to read uploaded file")
		return
	}
	defer file.Close()

	result, err := h.uploadService.Upload(c.Request.Context(), formsapp.UploadInput{
		FieldID:     c.PostForm("fieldId"),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

package handlers

import (
	"net/http"
	"time"

	"rentalbill/internal/common"
	"rentalbill/internal/services"

	"github.com/labstack/echo/v4"
)

const presignExpiry = 15 * time.Minute

type UploadHandlers struct {
	storageService services.StorageService
}

func NewUploadHandlers(storageService services.StorageService) *UploadHandlers {
	return &UploadHandlers{storageService: storageService}
}

// ServeUpload redirects a stored image path to a short-lived presigned URL.
func (h *UploadHandlers) ServeUpload(c echo.Context) error {
	object := c.Param("object")
	if object == "" {
		return common.SendValidationError(c, "object name is required")
	}

	url, err := h.storageService.PresignedURL(object, presignExpiry)
	if err != nil {
		return common.SendNotFoundError(c, "File")
	}
	return c.Redirect(http.StatusFound, url)
}

package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-archive/internal/storage"
)

// UploadHandler accepts invoice images and stores them in object storage.
type UploadHandler struct {
	Images storage.ImageStore
}

func NewUploadHandler(img storage.ImageStore) *UploadHandler {
	return &UploadHandler{Images: img}
}

// UploadImage handles POST /api/invoices/upload-image. The multipart field
// must be named "image". On success the client receives the public URL to
// reference from an invoice and the storage key needed for later cleanup.
func (h *UploadHandler) UploadImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no image received"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "read upload failed"})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "read upload failed"})
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, key, err := h.Images.Upload(c.Request().Context(), data, fh.Filename, contentType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"imageUrl": url, "imageKey": key})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"elite-decor-web/internal/services"
)

// uploadedImage stores the optional image file posted under field and
// returns its public URL, or "" when no file was sent.
func uploadedImage(c *gin.Context, images *services.ImageService, field, folder string) (string, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	return images.Upload(c.Request.Context(), field, folder, header.Filename, header.Header.Get("Content-Type"), header.Size, file)
}

package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"elite-decor-web/internal/apperr"
)

const (
	FolderServices = "services"
	FolderAvatars  = "avatars"

	MaxImageSize = 5 << 20
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// ImageService uploads service images and profile avatars to the image
// host.
type ImageService struct {
	uploader ImageUploader
	logger   zerolog.Logger
}

func NewImageService(uploader ImageUploader, logger zerolog.Logger) *ImageService {
	return &ImageService{uploader: uploader, logger: logger}
}

// Upload stores data under folder and returns its public URL. field names
// the form field for validation errors.
func (s *ImageService) Upload(ctx context.Context, field, folder, filename, contentType string, size int64, data io.Reader) (string, error) {
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !allowedImageTypes[contentType] {
		return "", apperr.Validation(field, "image must be a JPEG, PNG, WebP or GIF file")
	}
	if size <= 0 {
		return "", apperr.Validation(field, "image is empty")
	}
	if size > MaxImageSize {
		return "", apperr.Validation(field, fmt.Sprintf("image must be at most %d MB", MaxImageSize>>20))
	}

	url, err := s.uploader.UploadImage(ctx, folder, filename, contentType, io.LimitReader(data, MaxImageSize))
	if err != nil {
		s.logger.Error().Err(err).Str("folder", folder).Msg("image upload failed")
		return "", apperr.Fetch("upload_failed", "image upload failed, please try again", err)
	}
	s.logger.Info().Str("folder", folder).Str("url", url).Msg("image uploaded")
	return url, nil
}

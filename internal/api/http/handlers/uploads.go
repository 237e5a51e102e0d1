package handlers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tashkhees/support-portal/internal/config"
	apperrors "github.com/tashkhees/support-portal/pkg/util"
)

// saveAttachment stores an optional multipart attachment under the upload
// directory with a random filename, returning the public path. A missing
// file field is not an error.
func saveAttachment(c *fiber.Ctx, cfg config.UploadConfig) (*string, error) {
	file, err := c.FormFile("attachment")
	if err != nil || file == nil {
		return nil, nil
	}
	if file.Size > cfg.MaxSizeBytes {
		return nil, apperrors.NewValidationError("Attachment is too large", map[string]any{"maxSizeBytes": cfg.MaxSizeBytes})
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExt(ext, cfg.AllowedExts) {
		return nil, apperrors.NewValidationError("Attachment type is not allowed", map[string]any{"allowed": cfg.AllowedExts})
	}
	name := uuid.NewString() + ext
	if err := c.SaveFile(file, filepath.Join(cfg.Dir, name)); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("saving attachment: %w", err))
	}
	path := "/uploads/" + name
	return &path, nil
}

func allowedExt(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == strings.ToLower(strings.TrimSpace(a)) {
			return true
		}
	}
	return false
}

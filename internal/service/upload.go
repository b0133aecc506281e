package service

import (
	"path/filepath"
	"strings"

	"github.com/HannaFrangi/Lynx/internal/models"
)

// Upload is a file received from a multipart request, already read into
// memory by the handler.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MaxUploadSize bounds media uploads at 10 MiB.
const MaxUploadSize = 10 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".mp4":  true,
}

// ext validates the upload and returns its lowercased extension.
func (u *Upload) ext() (string, error) {
	if len(u.Data) == 0 {
		return "", models.NewValidationError("uploaded file is empty")
	}
	if len(u.Data) > MaxUploadSize {
		return "", models.NewValidationError("uploaded file is too large")
	}
	ext := strings.ToLower(filepath.Ext(u.Filename))
	if !allowedExtensions[ext] {
		return "", models.NewValidationError("unsupported file type")
	}
	return ext, nil
}

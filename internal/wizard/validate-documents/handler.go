// internal/wizard/validate-documents/handler.go
package validatedocuments

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"bursary-portal/internal/models"
)

type Validator struct {
	maxSize int64
}

func NewValidator(config *Config) *Validator {
	if config == nil || config.MaxSizeBytes <= 0 {
		config = LoadConfig()
	}
	return &Validator{maxSize: config.MaxSizeBytes}
}

// ValidateDocument returns "" when slot is acceptable for docType.
func (v *Validator) ValidateDocument(docType models.DocumentType, slot models.DocumentSlot, required bool) string {
	if slot.Empty() {
		if required {
			return fmt.Sprintf("%s is required", docType.Label())
		}
		return ""
	}
	return v.ValidateFile(slot.File)
}

// ValidateFile applies the size and type rules to a single file.
func (v *Validator) ValidateFile(file *models.File) string {
	if file == nil {
		return ""
	}
	if file.Size > v.maxSize {
		return fmt.Sprintf("File size must be less than %dMB", v.maxSize>>20)
	}
	if !allowedTypes[MediaType(file)] {
		return typeMessage
	}
	return ""
}

// MediaType returns the file's media type without parameters, sniffing the
// content when no type was declared.
func MediaType(file *models.File) string {
	ct := strings.TrimSpace(file.ContentType)
	if ct == "" || ct == "application/octet-stream" {
		if len(file.Data) == 0 {
			return ct
		}
		ct = http.DetectContentType(file.Data)
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(ct)
	}
	return strings.ToLower(mt)
}

// Prepare fills in Size and ContentType when the upload did not carry them.
func Prepare(file *models.File) *models.File {
	if file == nil {
		return nil
	}
	if file.Size == 0 {
		file.Size = int64(len(file.Data))
	}
	ct := strings.TrimSpace(file.ContentType)
	if (ct == "" || ct == "application/octet-stream") && len(file.Data) > 0 {
		file.ContentType = MediaType(file)
	}
	return file
}

// internal/wizard/validate-documents/models.go
package validatedocuments

// MaxFileSize is 10 MiB.
const MaxFileSize int64 = 10 << 20

const typeMessage = "Only PDF, JPEG, and PNG files are allowed"

var allowedTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/jpg":       true,
}

// AllowedTypes lists the accepted media types.
func AllowedTypes() []string {
	return []string{"application/pdf", "image/jpeg", "image/png", "image/jpg"}
}

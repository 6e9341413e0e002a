// internal/wizard/validate-documents/handler_test.go
package validatedocuments

import (
	"testing"

	"bursary-portal/internal/models"
	"bursary-portal/internal/wizard/wizardtest"

	"github.com/stretchr/testify/assert"
)

func createTestValidator() *Validator {
	return NewValidator(LoadConfig())
}

func TestValidateDocument(t *testing.T) {
	v := createTestValidator()

	tests := []struct {
		name     string
		docType  models.DocumentType
		slot     models.DocumentSlot
		required bool
		want     string
	}{
		{"required empty", models.DocTranscript, models.DocumentSlot{}, true, "Academic Transcript is required"},
		{"required uploaded flag without file", models.DocNationalIDCard, models.DocumentSlot{Uploaded: true}, true, "National ID Card is required"},
		{"optional empty", models.DocPayslip, models.DocumentSlot{}, false, ""},
		{"valid pdf", models.DocTranscript, models.DocumentSlot{Uploaded: true, File: wizardtest.PDF("t.pdf", 2048)}, true, ""},
		{"valid png", models.DocCoverLetter, models.DocumentSlot{Uploaded: true, File: wizardtest.PNG("c.png")}, false, ""},
		{"twelve mebibytes", models.DocTranscript, models.DocumentSlot{Uploaded: true, File: wizardtest.PDF("big.pdf", 12<<20)}, true, "File size must be less than 10MB"},
		{"exactly ten mebibytes", models.DocTranscript, models.DocumentSlot{Uploaded: true, File: wizardtest.PDF("edge.pdf", 10<<20)}, true, ""},
		{"word document", models.DocCoverLetter, models.DocumentSlot{Uploaded: true, File: &models.File{
			Name: "c.docx", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Size: 100,
		}}, false, "Only PDF, JPEG, and PNG files are allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.ValidateDocument(tt.docType, tt.slot, tt.required))
		})
	}
}

func TestMediaType(t *testing.T) {
	pdf := wizardtest.PDF("x.pdf", 64)

	pdf.ContentType = "application/pdf; name=x.pdf"
	assert.Equal(t, "application/pdf", MediaType(pdf))

	pdf.ContentType = ""
	assert.Equal(t, "application/pdf", MediaType(pdf))

	pdf.ContentType = "application/octet-stream"
	assert.Equal(t, "application/pdf", MediaType(pdf))

	assert.Equal(t, "image/jpg", MediaType(&models.File{ContentType: "IMAGE/JPG"}))
}

func TestPrepare(t *testing.T) {
	f := Prepare(&models.File{Name: "scan.png", Data: wizardtest.PNG("x").Data})
	assert.Equal(t, "image/png", f.ContentType)
	assert.Equal(t, int64(len(f.Data)), f.Size)
	assert.Nil(t, Prepare(nil))
}

func TestValidateFile_CustomLimit(t *testing.T) {
	v := NewValidator(&Config{MaxSizeBytes: 2 << 20})
	assert.Equal(t, "File size must be less than 2MB", v.ValidateFile(wizardtest.PDF("x.pdf", 3<<20)))
}

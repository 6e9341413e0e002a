// internal/wizard/submit-application/models.go
package submitapplication

import "bursary-portal/internal/models"

const (
	TaskType = "submit-application"

	SubjectsField           = "subjects"
	PreviousEducationsField = "previousEducations"
	additionalDocPrefix     = "additionalDoc"
)

// Payload is a frozen copy of everything that goes into one submission.
type Payload struct {
	FormData           models.FormData
	Subjects           []models.Subject
	PreviousEducations []models.PreviousEducation
	Documents          models.Documents
	AdditionalDocs     []*models.File
	Token              string
}

// internal/wizard/step-completion/models.go
package stepcompletion

import (
	"strconv"

	"bursary-portal/internal/models"
)

// Snapshot is everything the step validators read.
type Snapshot struct {
	FormData       models.FormData
	Subjects       []models.Subject
	Documents      models.Documents
	AdditionalDocs []*models.File
}

var (
	educationBaseFields = []models.Field{models.FieldHighSchoolName, models.FieldHighSchoolMatricYear}

	higherEdRequired = []models.Field{
		models.FieldInstitutionName, models.FieldInstitutionDegreeType, models.FieldInstitutionDegreeName,
		models.FieldInstitutionMajor, models.FieldInstitutionStartYear,
	}
	higherEdOptional = []models.Field{models.FieldInstitutionEndYear, models.FieldInstitutionGPA}

	parent1Required = []models.Field{
		models.FieldParent1FirstName, models.FieldParent1LastName, models.FieldParent1Relationship,
		models.FieldParent1Occupation, models.FieldParent1MonthlyIncome,
	}
	parent1Optional = []models.Field{models.FieldParent1Phone, models.FieldParent1Email}

	parent2Fields = []models.Field{
		models.FieldParent2FirstName, models.FieldParent2LastName, models.FieldParent2Relationship,
		models.FieldParent2Occupation, models.FieldParent2MonthlyIncome, models.FieldParent2Phone,
		models.FieldParent2Email,
	}
)

// AdditionalDocKey is the error key of the extra upload at index.
func AdditionalDocKey(index int) string {
	return "additionalDocs." + strconv.Itoa(index)
}

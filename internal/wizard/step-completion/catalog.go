// internal/wizard/step-completion/catalog.go
package stepcompletion

import (
	"bursary-portal/internal/models"
	validatedocuments "bursary-portal/internal/wizard/validate-documents"
	validatefields "bursary-portal/internal/wizard/validate-fields"
	"bursary-portal/pkg/catalog"
)

const CatalogVersion = "1.0.0"

var stepFields = [models.StepCount][]models.Field{
	models.StepPersonal:  models.PersonalFields,
	models.StepEducation: models.EducationFields,
	models.StepHousehold: models.HouseholdFields,
}

// Catalog describes the wizard from the live validation rules. maxSize is the
// configured upload limit; 0 means the default.
func Catalog(maxSize int64, lastUpdated string) *catalog.Catalog {
	if maxSize <= 0 {
		maxSize = validatedocuments.MaxFileSize
	}
	c := &catalog.Catalog{
		Version:     CatalogVersion,
		LastUpdated: lastUpdated,
		Upload: catalog.Upload{
			MaxSizeBytes: maxSize,
			AllowedTypes: validatedocuments.AllowedTypes(),
		},
	}

	for i := models.StepPersonal; i <= models.StepDocuments; i++ {
		step := catalog.Step{Index: int(i), Name: i.Name(), Fields: []catalog.Field{}}
		for _, f := range stepFields[i] {
			rule, _ := validatefields.Rule(f)
			entry := catalog.Field{
				ID:                    string(f),
				Label:                 rule.Label,
				Required:              rule.Required,
				ConditionallyRequired: validatefields.ConditionallyRequired(f),
				MinLength:             rule.MinLength,
				MaxLength:             rule.MaxLength,
				Message:               rule.Message,
			}
			if rule.Pattern != nil {
				entry.Pattern = rule.Pattern.String()
			}
			step.Fields = append(step.Fields, entry)
		}
		c.Steps = append(c.Steps, step)
	}

	for _, d := range models.DocumentTypes {
		c.Documents = append(c.Documents, catalog.Document{
			Type:      string(d),
			Label:     d.Label(),
			Mandatory: d.Mandatory(),
		})
	}
	return c
}

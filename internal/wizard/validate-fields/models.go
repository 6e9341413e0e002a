// internal/wizard/validate-fields/models.go
package validatefields

import (
	"regexp"

	"bursary-portal/internal/common/validation"
	"bursary-portal/internal/models"
)

const (
	MinAge = 16
	MaxAge = 100

	MatricYearWindow     = 50
	MaxStudyYears        = 10
	MinHouseholdMembers  = 1
	MaxHouseholdMembers  = 20
	MaxMonthlyIncome     = 1_000_000
	MinGPA, MaxGPA       = 0.0, 100.0
	MaxEmailLocalLength  = 64
	MaxEmailDomainLength = 253
)

// Predefined patterns
var (
	namePattern    = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)
	textPattern    = regexp.MustCompile(`^[a-zA-Z0-9\s\-'.,&()/]+$`)
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern   = regexp.MustCompile(`^[\d\s()+\-]+$`)
	idPattern      = regexp.MustCompile(`^[\d\s\-]+$`)
	datePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearPattern    = regexp.MustCompile(`^\d{4}$`)
	postalPattern  = regexp.MustCompile(`^\d{4}$`)
	countPattern   = regexp.MustCompile(`^\d+$`)
	amountPattern  = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	gpaPattern     = regexp.MustCompile(`^\d{1,3}(\.\d{1,2})?$`)
	addressPattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-'.,#/]+$`)
)

// escalated fields become required when the applicant is enrolled at university.
var escalated = map[models.Field]bool{
	models.FieldInstitutionName:       true,
	models.FieldInstitutionDegreeType: true,
	models.FieldInstitutionDegreeName: true,
	models.FieldInstitutionMajor:      true,
	models.FieldInstitutionStartYear:  true,
}

func nameRule(label string, required bool) validation.Rule {
	return validation.Rule{
		Label:     label,
		Required:  required,
		MinLength: 2,
		MaxLength: 50,
		Pattern:   namePattern,
		Message:   label + " can only contain letters, spaces, hyphens and apostrophes",
	}
}

func phoneRule(label string, required bool) validation.Rule {
	return validation.Rule{
		Label:     label,
		Required:  required,
		MinLength: 10,
		MaxLength: 20,
		Pattern:   phonePattern,
		Message:   "Please enter a valid phone number",
	}
}

func emailRule(label string, required bool) validation.Rule {
	return validation.Rule{
		Label:     label,
		Required:  required,
		MaxLength: 320,
		Pattern:   emailPattern,
		Message:   "Please enter a valid email address",
	}
}

func incomeRule(label string, required bool) validation.Rule {
	return validation.Rule{
		Label:    label,
		Required: required,
		Pattern:  amountPattern,
		Message:  "Please enter a valid amount",
	}
}

func selectRule(label string, required bool) validation.Rule {
	return validation.Rule{Label: label, Required: required, MaxLength: 50}
}

// rules is the static rule table. Required reflects the unconditional policy only.
var rules = map[models.Field]validation.Rule{
	// personal
	models.FieldFirstName: nameRule("First name", true),
	models.FieldLastName:  nameRule("Last name", true),
	models.FieldIDNumber: {
		Label: "ID number", Required: true, MaxLength: 20,
		Pattern: idPattern, Message: "ID number can only contain digits",
	},
	models.FieldDOB: {
		Label: "Date of birth", Required: true,
		Pattern: datePattern, Message: "Please enter a valid date (YYYY-MM-DD)",
	},
	models.FieldGender:      selectRule("Gender", true),
	models.FieldNationality: {Label: "Nationality", Required: true, MinLength: 2, MaxLength: 50, Pattern: namePattern, Message: "Nationality can only contain letters"},
	models.FieldEmail:       emailRule("Email", true),
	models.FieldPhone:       phoneRule("Phone number", true),
	models.FieldStreetAddress: {
		Label: "Street address", Required: true, MinLength: 5, MaxLength: 100,
		Pattern: addressPattern, Message: "Street address contains invalid characters",
	},
	models.FieldCity:     {Label: "City", Required: true, MinLength: 2, MaxLength: 50, Pattern: namePattern, Message: "City can only contain letters, spaces, hyphens and apostrophes"},
	models.FieldProvince: selectRule("Province", true),
	models.FieldPostalCode: {
		Label: "Postal code", Required: true,
		Pattern: postalPattern, Message: "Postal code must be 4 digits",
	},

	// education
	models.FieldHighSchoolName: {
		Label: "High school name", Required: true, MinLength: 2, MaxLength: 100,
		Pattern: textPattern, Message: "High school name contains invalid characters",
	},
	models.FieldHighSchoolMatricYear: {
		Label: "Matric year", Required: true,
		Pattern: yearPattern, Message: "Please enter a valid year",
	},
	models.FieldCurrentEducationLevel: selectRule("Current education level", true),
	models.FieldInstitutionName: {
		Label: "Institution name", MinLength: 2, MaxLength: 100,
		Pattern: textPattern, Message: "Institution name contains invalid characters",
	},
	models.FieldInstitutionDegreeType: selectRule("Degree type", false),
	models.FieldInstitutionDegreeName: {
		Label: "Degree name", MinLength: 2, MaxLength: 100,
		Pattern: textPattern, Message: "Degree name contains invalid characters",
	},
	models.FieldInstitutionMajor: {
		Label: "Major", MinLength: 2, MaxLength: 100,
		Pattern: textPattern, Message: "Major contains invalid characters",
	},
	models.FieldInstitutionStartYear: {
		Label: "Start year", Pattern: yearPattern, Message: "Please enter a valid year",
	},
	models.FieldInstitutionEndYear: {
		Label: "End year", Pattern: yearPattern, Message: "Please enter a valid year",
	},
	models.FieldInstitutionGPA: {
		Label: "GPA", Pattern: gpaPattern, Message: "GPA must be a percentage between 0 and 100",
	},

	// household
	models.FieldNumberOfMembers: {
		Label: "Number of household members", Required: true,
		Pattern: countPattern, Message: "Please enter a whole number",
	},
	models.FieldParent1FirstName:     nameRule("Parent/guardian first name", true),
	models.FieldParent1LastName:      nameRule("Parent/guardian last name", true),
	models.FieldParent1Relationship:  selectRule("Relationship", true),
	models.FieldParent1Occupation:    {Label: "Occupation", Required: true, MinLength: 2, MaxLength: 100, Pattern: textPattern, Message: "Occupation contains invalid characters"},
	models.FieldParent1MonthlyIncome: incomeRule("Monthly income", true),
	models.FieldParent1Phone:         phoneRule("Parent/guardian phone", false),
	models.FieldParent1Email:         emailRule("Parent/guardian email", false),
	models.FieldParent2FirstName:     nameRule("Second parent/guardian first name", false),
	models.FieldParent2LastName:      nameRule("Second parent/guardian last name", false),
	models.FieldParent2Relationship:  selectRule("Relationship", false),
	models.FieldParent2Occupation:    {Label: "Occupation", MinLength: 2, MaxLength: 100, Pattern: textPattern, Message: "Occupation contains invalid characters"},
	models.FieldParent2MonthlyIncome: incomeRule("Monthly income", false),
	models.FieldParent2Phone:         phoneRule("Second parent/guardian phone", false),
	models.FieldParent2Email:         emailRule("Second parent/guardian email", false),
}

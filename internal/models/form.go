// internal/models/form.go
package models

import "strings"

// Field names one FormData entry. The string value is the wire key used in
// the draft store and the multipart body.
type Field string

// Personal information
const (
	FieldFirstName     Field = "firstName"
	FieldLastName      Field = "lastName"
	FieldIDNumber      Field = "idnumber"
	FieldDOB           Field = "dob"
	FieldGender        Field = "gender"
	FieldNationality   Field = "nationality"
	FieldEmail         Field = "email"
	FieldPhone         Field = "phone"
	FieldStreetAddress Field = "streetAddress"
	FieldCity          Field = "city"
	FieldProvince      Field = "province"
	FieldPostalCode    Field = "postalCode"
)

// Education
const (
	FieldHighSchoolName        Field = "highSchoolName"
	FieldHighSchoolMatricYear  Field = "highSchoolMatricYear"
	FieldCurrentEducationLevel Field = "currentEducationLevel"
	FieldInstitutionName       Field = "institutionName"
	FieldInstitutionDegreeType Field = "institutionDegreeType"
	FieldInstitutionDegreeName Field = "institutionDegreeName"
	FieldInstitutionMajor      Field = "institutionMajor"
	FieldInstitutionStartYear  Field = "institutionStartYear"
	FieldInstitutionEndYear    Field = "institutionEndYear"
	FieldInstitutionGPA        Field = "institutionGPA"
)

// Household
const (
	FieldNumberOfMembers      Field = "numberOfMembers"
	FieldParent1FirstName     Field = "parent1FirstName"
	FieldParent1LastName      Field = "parent1LastName"
	FieldParent1Relationship  Field = "parent1Relationship"
	FieldParent1Occupation    Field = "parent1Occupation"
	FieldParent1MonthlyIncome Field = "parent1MonthlyIncome"
	FieldParent1Phone         Field = "parent1Phone"
	FieldParent1Email         Field = "parent1Email"
	FieldParent2FirstName     Field = "parent2FirstName"
	FieldParent2LastName      Field = "parent2LastName"
	FieldParent2Relationship  Field = "parent2Relationship"
	FieldParent2Occupation    Field = "parent2Occupation"
	FieldParent2MonthlyIncome Field = "parent2MonthlyIncome"
	FieldParent2Phone         Field = "parent2Phone"
	FieldParent2Email         Field = "parent2Email"
)

// EducationLevelUniversityEnrolled escalates the higher-education fields to required.
const EducationLevelUniversityEnrolled = "university_enrolled"

var (
	PersonalFields = []Field{
		FieldFirstName, FieldLastName, FieldIDNumber, FieldDOB, FieldGender, FieldNationality,
		FieldEmail, FieldPhone, FieldStreetAddress, FieldCity, FieldProvince, FieldPostalCode,
	}

	EducationFields = []Field{
		FieldHighSchoolName, FieldHighSchoolMatricYear, FieldCurrentEducationLevel,
		FieldInstitutionName, FieldInstitutionDegreeType, FieldInstitutionDegreeName,
		FieldInstitutionMajor, FieldInstitutionStartYear, FieldInstitutionEndYear, FieldInstitutionGPA,
	}

	HouseholdFields = []Field{
		FieldNumberOfMembers,
		FieldParent1FirstName, FieldParent1LastName, FieldParent1Relationship, FieldParent1Occupation,
		FieldParent1MonthlyIncome, FieldParent1Phone, FieldParent1Email,
		FieldParent2FirstName, FieldParent2LastName, FieldParent2Relationship, FieldParent2Occupation,
		FieldParent2MonthlyIncome, FieldParent2Phone, FieldParent2Email,
	}

	// FormFields is every field in display and submission order.
	FormFields = concatFields(PersonalFields, EducationFields, HouseholdFields)

	formFieldSet = func() map[Field]struct{} {
		m := make(map[Field]struct{}, len(FormFields))
		for _, f := range FormFields {
			m[f] = struct{}{}
		}
		return m
	}()
)

func concatFields(groups ...[]Field) []Field {
	var out []Field
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// IsFormField reports whether f belongs to FormData.
func IsFormField(f Field) bool {
	_, ok := formFieldSet[f]
	return ok
}

// FormData holds every form field. Constructors and Normalize guarantee that
// all FormFields are present.
type FormData map[Field]string

// NewFormData returns FormData with every field set to "".
func NewFormData() FormData {
	fd := make(FormData, len(FormFields))
	for _, f := range FormFields {
		fd[f] = ""
	}
	return fd
}

// Normalize fills missing fields with "" and drops unknown keys.
func (fd FormData) Normalize() FormData {
	out := NewFormData()
	for k, v := range fd {
		if IsFormField(k) {
			out[k] = v
		}
	}
	return out
}

func (fd FormData) Clone() FormData {
	out := make(FormData, len(fd))
	for k, v := range fd {
		out[k] = v
	}
	return out
}

// Get returns the value of f, or "" on a nil map.
func (fd FormData) Get(f Field) string {
	if fd == nil {
		return ""
	}
	return fd[f]
}

// Has reports whether f holds a non-blank value.
func (fd FormData) Has(f Field) bool {
	return strings.TrimSpace(fd.Get(f)) != ""
}

// UniversityEnrolled reports whether the higher-education branch applies.
func (fd FormData) UniversityEnrolled() bool {
	return fd.Get(FieldCurrentEducationLevel) == EducationLevelUniversityEnrolled
}

// FieldErrors maps an error key (a Field name, or "subjects.<i>.name" style
// keys for line items) to its message.
type FieldErrors map[string]string

// Merge copies src into fe.
func (fe FieldErrors) Merge(src FieldErrors) {
	for k, v := range src {
		fe[k] = v
	}
}

// Touched records which error keys have been interacted with.
type Touched map[string]bool

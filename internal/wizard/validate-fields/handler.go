// internal/wizard/validate-fields/handler.go
package validatefields

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"bursary-portal/internal/common/validation"
	"bursary-portal/internal/models"
)

// Validator maps a field, its value and the whole form to an error message.
// It holds no state besides the clock and is safe for concurrent use.
type Validator struct {
	now func() time.Time
}

func NewValidator(config *Config) *Validator {
	if config == nil {
		config = LoadConfig()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// Validate returns "" when value is acceptable for field. form supplies the
// values that conditional and cross-field checks read.
func (v *Validator) Validate(field models.Field, value string, form models.FormData) string {
	rule, ok := rules[field]
	if !ok {
		return ""
	}

	if msg := validation.Check(rule, value, IsRequired(field, form)); msg != "" {
		return msg
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	return v.semantic(field, trimmed, form)
}

// IsRequired reports the effective required-ness of field for form.
func IsRequired(field models.Field, form models.FormData) bool {
	rule, ok := rules[field]
	if !ok {
		return false
	}
	if rule.Required {
		return true
	}
	return escalated[field] && form.UniversityEnrolled()
}

// Rule exposes the static rule for field.
func Rule(field models.Field) (validation.Rule, bool) {
	rule, ok := rules[field]
	return rule, ok
}

// ConditionallyRequired reports whether field escalates for enrolled students.
func ConditionallyRequired(field models.Field) bool {
	return escalated[field]
}

func (v *Validator) semantic(field models.Field, value string, form models.FormData) string {
	switch field {
	case models.FieldDOB:
		return v.checkDOB(value)
	case models.FieldEmail:
		return checkEmail(value)
	case models.FieldPhone:
		if len(validation.DigitsOnly(value)) != 10 {
			return "Phone number must contain exactly 10 digits"
		}
	case models.FieldIDNumber:
		if len(validation.DigitsOnly(value)) != 13 {
			return "ID number must contain exactly 13 digits"
		}
	case models.FieldInstitutionEndYear:
		return checkEndYear(value, form.Get(models.FieldInstitutionStartYear))
	case models.FieldHighSchoolMatricYear:
		return v.checkMatricYear(value)
	case models.FieldInstitutionGPA:
		gpa, err := strconv.ParseFloat(value, 64)
		if err != nil || gpa < MinGPA || gpa > MaxGPA {
			return "GPA must be between 0 and 100"
		}
	case models.FieldNumberOfMembers:
		n, err := strconv.Atoi(value)
		if err != nil || n < MinHouseholdMembers || n > MaxHouseholdMembers {
			return fmt.Sprintf("Number of household members must be between %d and %d", MinHouseholdMembers, MaxHouseholdMembers)
		}
	case models.FieldParent1MonthlyIncome:
		income, err := strconv.ParseFloat(value, 64)
		if err != nil || income < 0 || income > MaxMonthlyIncome {
			return "Monthly income must be between 0 and 1,000,000"
		}
	}
	return ""
}

func (v *Validator) checkDOB(value string) string {
	now := v.now()
	dob, err := time.ParseInLocation("2006-01-02", value, now.Location())
	if err != nil {
		return "Please enter a valid date (YYYY-MM-DD)"
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if dob.After(today) {
		return "Date of birth cannot be in the future"
	}

	age := Age(dob, today)
	if age < MinAge {
		return fmt.Sprintf("You must be at least %d years old", MinAge)
	}
	if age > MaxAge {
		return "Please enter a valid date of birth"
	}
	return ""
}

// Age is the number of whole years between dob and on, decremented when the
// birthday has not yet occurred in on's year.
func Age(dob, on time.Time) int {
	age := on.Year() - dob.Year()
	if on.Month() < dob.Month() || (on.Month() == dob.Month() && on.Day() < dob.Day()) {
		age--
	}
	return age
}

func checkEmail(value string) string {
	parts := strings.Split(value, "@")
	if len(parts) != 2 {
		return "Please enter a valid email address"
	}
	if len(parts[0]) > MaxEmailLocalLength {
		return "Email username is too long"
	}
	if len(parts[1]) > MaxEmailDomainLength {
		return "Email domain is too long"
	}
	return ""
}

func checkEndYear(endValue, startValue string) string {
	startValue = strings.TrimSpace(startValue)
	if startValue == "" {
		return ""
	}
	start, err := strconv.Atoi(startValue)
	if err != nil {
		return ""
	}
	end, err := strconv.Atoi(endValue)
	if err != nil {
		return "Please enter a valid year"
	}
	if end < start {
		return "End year cannot be before start year"
	}
	if end > start+MaxStudyYears {
		return fmt.Sprintf("End year must be within %d years of start year", MaxStudyYears)
	}
	return ""
}

func (v *Validator) checkMatricYear(value string) string {
	year, err := strconv.Atoi(value)
	if err != nil {
		return "Please enter a valid year"
	}
	current := v.now().Year()
	if year > current {
		return "Matric year cannot be in the future"
	}
	if year < current-MatricYearWindow {
		return fmt.Sprintf("Matric year cannot be more than %d years ago", MatricYearWindow)
	}
	return ""
}

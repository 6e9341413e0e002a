// internal/wizard/validate-subjects/handler.go
package validatesubjects

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"bursary-portal/internal/models"
)

// ValidateSubject checks one subject row. index is only used by callers that
// merge the result into a step error map.
func ValidateSubject(subject models.Subject, _ int) SubjectErrors {
	return SubjectErrors{
		Name:  validateName(subject.Name),
		Grade: validateGrade(subject.Grade),
	}
}

func validateName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Subject name is required"
	}
	n := utf8.RuneCountInString(name)
	if n < MinNameLength {
		return fmt.Sprintf("Subject name must be at least %d characters", MinNameLength)
	}
	if n > MaxNameLength {
		return fmt.Sprintf("Subject name must be no more than %d characters", MaxNameLength)
	}
	if !subjectNamePattern.MatchString(name) {
		return "Subject name can only contain letters, spaces, hyphens and apostrophes"
	}
	return ""
}

func validateGrade(grade string) string {
	grade = strings.TrimSpace(grade)
	if grade == "" {
		return "Grade is required"
	}
	value, err := strconv.ParseFloat(grade, 64)
	if err != nil || value < MinGrade || value > MaxGrade {
		return "Grade must be a number between 0 and 100"
	}
	if !gradePattern.MatchString(grade) {
		return "Grade can have at most 2 decimal places"
	}
	return ""
}

// Key returns the namespaced error key for attr of row index.
func Key(index int, attr string) string {
	return fmt.Sprintf("%s.%d.%s", ListKey, index, attr)
}

// ValidateList checks the whole list and returns merged, index-namespaced errors.
func ValidateList(subjects []models.Subject) models.FieldErrors {
	errs := models.FieldErrors{}
	if len(subjects) == 0 {
		errs[ListKey] = "At least one subject is required"
		return errs
	}
	for i, s := range subjects {
		e := ValidateSubject(s, i)
		if e.Name != "" {
			errs[Key(i, "name")] = e.Name
		}
		if e.Grade != "" {
			errs[Key(i, "grade")] = e.Grade
		}
	}
	return errs
}

// internal/wizard/validate-subjects/models.go
package validatesubjects

import "regexp"

const (
	MinNameLength = 2
	MaxNameLength = 100
	MinGrade      = 0.0
	MaxGrade      = 100.0

	// ListKey holds the error raised for an empty subject list.
	ListKey = "subjects"
)

var (
	subjectNamePattern = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)
	gradePattern       = regexp.MustCompile(`^\d{1,3}(\.\d{1,2})?$`)
)

// SubjectErrors holds at most one message per subject attribute.
type SubjectErrors struct {
	Name  string `json:"name,omitempty"`
	Grade string `json:"grade,omitempty"`
}

func (e SubjectErrors) Empty() bool {
	return e.Name == "" && e.Grade == ""
}

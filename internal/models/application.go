// internal/models/application.go
package models

// Subject is one examinable school subject.
type Subject struct {
	Name  string `json:"name"`
	Grade string `json:"grade"`
}

// PreviousEducation is one higher-education history entry.
type PreviousEducation struct {
	InstitutionName       string `json:"institutionName"`
	InstitutionDegreeType string `json:"institutionDegreeType"`
	InstitutionDegreeName string `json:"institutionDegreeName"`
	InstitutionMajor      string `json:"institutionMajor"`
	InstitutionStartYear  string `json:"institutionStartYear"`
	InstitutionEndYear    string `json:"institutionEndYear"`
	InstitutionGPA        string `json:"institutionGPA"`
}

// Application is the record returned by the backend once submitted.
type Application struct {
	ID        string                 `json:"id"`
	Status    string                 `json:"status"`
	FirstName string                 `json:"firstName,omitempty"`
	LastName  string                 `json:"lastName,omitempty"`
	Email     string                 `json:"email,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt string                 `json:"createdAt,omitempty"`
	UpdatedAt string                 `json:"updatedAt,omitempty"`
}

// Note is an administrator note attached to an application.
type Note struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Author    string `json:"author,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// SubmitResult is the 2xx body of the create endpoint.
type SubmitResult struct {
	ID      string                 `json:"id,omitempty"`
	Message string                 `json:"message,omitempty"`
	Raw     map[string]interface{} `json:"-"`
}

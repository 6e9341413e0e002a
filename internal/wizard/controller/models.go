// internal/wizard/controller/models.go
package controller

import (
	"context"

	"bursary-portal/internal/models"
	submitapplication "bursary-portal/internal/wizard/submit-application"
	validatesubjects "bursary-portal/internal/wizard/validate-subjects"
)

// Submitter posts an assembled application.
type Submitter interface {
	Submit(ctx context.Context, payload *submitapplication.Payload) (*models.SubmitResult, error)
}

// DocumentView is the metadata of an uploaded file. Bytes are never returned.
type DocumentView struct {
	Uploaded    bool   `json:"uploaded"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// View is a read-only copy of a wizard.
type View struct {
	SessionID          string                               `json:"sessionId"`
	FormData           models.FormData                      `json:"formData"`
	Subjects           []models.Subject                     `json:"subjects"`
	SubjectErrors      validatesubjects.SubjectErrors       `json:"subjectErrors"`
	PreviousEducations []models.PreviousEducation           `json:"previousEducations"`
	Documents          map[models.DocumentType]DocumentView `json:"documents"`
	AdditionalDocs     []DocumentView                       `json:"additionalDocs"`
	State              models.WizardState                   `json:"state"`
	StepName           string                               `json:"stepName"`
	LastResult         *models.SubmitResult                 `json:"lastResult,omitempty"`
}

func documentView(f *models.File) DocumentView {
	if f == nil {
		return DocumentView{}
	}
	return DocumentView{Uploaded: true, Name: f.Name, ContentType: f.ContentType, Size: f.Size}
}

// internal/dashboard/models.go
package dashboard

import "bursary-portal/internal/models"

const (
	LoginPath         = "/auth/login"
	MyApplicationPath = "/applications/my-application"
	notesPathFormat   = "/applications/%s/notes"
)

// Overview is what the applicant dashboard shows.
type Overview struct {
	Application *models.Application `json:"application"`
	Notes       []models.Note       `json:"notes"`
}

type applicationEnvelope struct {
	Application *models.Application `json:"application"`
}

type notesEnvelope struct {
	Notes []models.Note `json:"notes"`
}

// internal/wizard/wizardtest/fixtures.go

// Package wizardtest holds fixtures shared by the wizard package tests.
package wizardtest

import (
	"bytes"
	"time"

	"bursary-portal/internal/models"
)

// Now is the fixed clock used across wizard tests.
var Now = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

func Clock() time.Time { return Now }

// PersonalForm returns the 12 personal fields filled with valid values.
func PersonalForm() models.FormData {
	fd := models.NewFormData()
	fd[models.FieldFirstName] = "Thandiwe"
	fd[models.FieldLastName] = "Mokoena"
	fd[models.FieldIDNumber] = "0501015800086"
	fd[models.FieldDOB] = "2005-01-01"
	fd[models.FieldGender] = "female"
	fd[models.FieldNationality] = "South African"
	fd[models.FieldEmail] = "thandi@example.com"
	fd[models.FieldPhone] = "0821234567"
	fd[models.FieldStreetAddress] = "12 Vilakazi Street"
	fd[models.FieldCity] = "Soweto"
	fd[models.FieldProvince] = "gauteng"
	fd[models.FieldPostalCode] = "1804"
	return fd
}

// ValidForm returns a form that passes the personal, education and household steps.
func ValidForm() models.FormData {
	fd := PersonalForm()
	fd[models.FieldHighSchoolName] = "Morris Isaacson High"
	fd[models.FieldHighSchoolMatricYear] = "2023"
	fd[models.FieldCurrentEducationLevel] = "high_school"
	fd[models.FieldNumberOfMembers] = "4"
	fd[models.FieldParent1FirstName] = "Sipho"
	fd[models.FieldParent1LastName] = "Mokoena"
	fd[models.FieldParent1Relationship] = "father"
	fd[models.FieldParent1Occupation] = "Teacher"
	fd[models.FieldParent1MonthlyIncome] = "15000"
	return fd
}

// Subjects returns the single valid subject used in the happy path.
func Subjects() []models.Subject {
	return []models.Subject{{Name: "Mathematics", Grade: "85"}}
}

// PDF returns a file of size bytes that sniffs as application/pdf.
func PDF(name string, size int) *models.File {
	header := []byte("%PDF-1.4\n")
	if size < len(header) {
		size = len(header)
	}
	data := make([]byte, size)
	copy(data, header)
	return &models.File{
		Name:        name,
		ContentType: "application/pdf",
		Size:        int64(size),
		Data:        data,
	}
}

// PNG returns a tiny PNG file.
func PNG(name string) *models.File {
	data := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
	return &models.File{Name: name, ContentType: "image/png", Size: int64(len(data)), Data: data}
}

// MandatoryDocuments returns the four mandatory slots filled with small PDFs.
func MandatoryDocuments() models.Documents {
	docs := models.NewDocuments()
	for _, d := range models.MandatoryDocuments {
		docs[d] = models.DocumentSlot{Uploaded: true, File: PDF(string(d)+".pdf", 1024)}
	}
	return docs
}

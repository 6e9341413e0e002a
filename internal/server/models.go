// internal/server/models.go
package server

import (
	"bursary-portal/internal/dashboard"
	"bursary-portal/internal/models"
)

type fieldRequest struct {
	Value *string `json:"value"`
}

type blurResponse struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type indexResponse struct {
	Index int `json:"index"`
}

type submitResponse struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

type loginResponse struct {
	User *models.User `json:"user,omitempty"`
}

type dashboardResponse struct {
	*dashboard.Overview
	HasApplication bool `json:"hasApplication"`
}

const submitSuccessMessage = "Application submitted successfully!"

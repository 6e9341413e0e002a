// internal/dashboard/client.go
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apperrors "bursary-portal/internal/common/errors"
	commonhttp "bursary-portal/internal/common/http"
	"bursary-portal/internal/common/logger"
	"bursary-portal/internal/models"
)

// Client wraps the backend calls the portal makes outside of submission.
// Every call goes through the JSON wrapper and so carries its timeout.
type Client struct {
	http   *commonhttp.Client
	logger logger.Logger
}

func NewClient(client *commonhttp.Client, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{http: client, logger: log.WithFields(map[string]interface{}{"component": "dashboard"})}
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, apperrors.NewInvalidInputError("email and password are required")
	}

	var resp models.LoginResponse
	err := c.http.DoJSON(ctx, commonhttp.RequestOptions{
		Method: http.MethodPost,
		Path:   LoginPath,
		Body:   req,
	}, &resp)
	if err != nil {
		c.logger.Warn("login failed", map[string]interface{}{"error": err})
		return nil, err
	}
	if resp.Token == "" {
		return nil, apperrors.NewAuthenticationError("login response carried no token")
	}
	return &resp, nil
}

// MyApplication returns the applicant's application, or nil when the backend
// has none on record.
func (c *Client) MyApplication(ctx context.Context, token string) (*models.Application, error) {
	var raw json.RawMessage
	err := c.http.DoJSON(ctx, commonhttp.RequestOptions{Path: MyApplicationPath, Token: token}, &raw)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	var env applicationEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Application != nil {
		return env.Application, nil
	}
	var app models.Application
	if err := json.Unmarshal(raw, &app); err != nil {
		return nil, apperrors.NewNetworkError(MyApplicationPath, fmt.Errorf("decode application: %w", err))
	}
	if app.ID == "" {
		return nil, nil
	}
	return &app, nil
}

// Notes lists the administrator notes of an application.
func (c *Client) Notes(ctx context.Context, token, applicationID string) ([]models.Note, error) {
	if applicationID == "" {
		return nil, apperrors.NewInvalidInputError("application id is required")
	}
	path := fmt.Sprintf(notesPathFormat, url.PathEscape(applicationID))

	var raw json.RawMessage
	if err := c.http.DoJSON(ctx, commonhttp.RequestOptions{Path: path, Token: token}, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []models.Note{}, nil
	}
	if raw[0] == '[' {
		var notes []models.Note
		if err := json.Unmarshal(raw, &notes); err != nil {
			return nil, apperrors.NewNetworkError(path, fmt.Errorf("decode notes: %w", err))
		}
		return notes, nil
	}
	var env notesEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperrors.NewNetworkError(path, fmt.Errorf("decode notes: %w", err))
	}
	if env.Notes == nil {
		env.Notes = []models.Note{}
	}
	return env.Notes, nil
}

// Overview loads the application and, when there is one, its notes.
func (c *Client) Overview(ctx context.Context, token string) (*Overview, error) {
	if token == "" {
		return nil, apperrors.NewAuthenticationError("no bearer token in storage")
	}
	app, err := c.MyApplication(ctx, token)
	if err != nil {
		return nil, err
	}
	out := &Overview{Application: app, Notes: []models.Note{}}
	if app == nil {
		return out, nil
	}
	notes, err := c.Notes(ctx, token, app.ID)
	if err != nil {
		c.logger.Warn("failed to load notes", map[string]interface{}{
			"applicationId": app.ID,
			"error":         err,
		})
		return out, nil
	}
	out.Notes = notes
	return out, nil
}

func notFound(err error) bool {
	se, ok := apperrors.AsStandard(err)
	if !ok || se.Metadata == nil {
		return false
	}
	status, _ := se.Metadata["status"].(int)
	return status == http.StatusNotFound
}

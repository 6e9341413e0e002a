// internal/dashboard/client_test.go
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "bursary-portal/internal/common/errors"
	commonhttp "bursary-portal/internal/common/http"
	"bursary-portal/internal/common/logger"
	"bursary-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func setupBackend(t *testing.T, routes map[string]http.HandlerFunc) *Client {
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return NewClient(commonhttp.NewClient(server.URL, 2*time.Second), logger.NewTestLogger(t))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// ==========================
// Login
// ==========================

func TestLogin(t *testing.T) {
	c := setupBackend(t, map[string]http.HandlerFunc{
		"POST /auth/login": func(w http.ResponseWriter, r *http.Request) {
			var req models.LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Password != "secret" {
				writeJSON(w, http.StatusUnauthorized, `{"error":"Invalid credentials"}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"token":"jwt-1","user":{"id":"u1","email":"thandi@example.com"}}`)
		},
	})
	ctx := context.Background()

	resp, err := c.Login(ctx, models.LoginRequest{Email: "thandi@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-1", resp.Token)
	assert.Equal(t, "u1", resp.User.ID)

	_, err = c.Login(ctx, models.LoginRequest{Email: "thandi@example.com", Password: "wrong"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeAuthenticationError))

	_, err = c.Login(ctx, models.LoginRequest{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
}

// ==========================
// Overview
// ==========================

func TestOverview(t *testing.T) {
	tests := []struct {
		name      string
		appBody   string
		appStatus int
		wantID    string
		wantNotes int
	}{
		{"enveloped", `{"application":{"id":"app-1","status":"pending"}}`, http.StatusOK, "app-1", 2},
		{"bare", `{"id":"app-1","status":"approved"}`, http.StatusOK, "app-1", 2},
		{"none", `{"error":"Application not found"}`, http.StatusNotFound, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := setupBackend(t, map[string]http.HandlerFunc{
				"GET /applications/my-application": func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "Bearer jwt-1", r.Header.Get("Authorization"))
					writeJSON(w, tt.appStatus, tt.appBody)
				},
				"GET /applications/app-1/notes": func(w http.ResponseWriter, r *http.Request) {
					writeJSON(w, http.StatusOK, `{"notes":[{"id":"n1","content":"Missing payslip"},{"id":"n2","content":"Approved"}]}`)
				},
			})

			ov, err := c.Overview(context.Background(), "jwt-1")
			require.NoError(t, err)
			if tt.wantID == "" {
				assert.Nil(t, ov.Application)
			} else {
				require.NotNil(t, ov.Application)
				assert.Equal(t, tt.wantID, ov.Application.ID)
			}
			assert.Len(t, ov.Notes, tt.wantNotes)
		})
	}
}

func TestOverview_NotesFailureIsNotFatal(t *testing.T) {
	c := setupBackend(t, map[string]http.HandlerFunc{
		"GET /applications/my-application": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"id":"app-9"}`)
		},
		"GET /applications/app-9/notes": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, `{"message":"boom"}`)
		},
	})

	ov, err := c.Overview(context.Background(), "jwt-1")
	require.NoError(t, err)
	assert.Equal(t, "app-9", ov.Application.ID)
	assert.Empty(t, ov.Notes)
}

func TestOverview_RequiresToken(t *testing.T) {
	c := NewClient(commonhttp.NewClient("http://127.0.0.1:1", time.Second), nil)
	_, err := c.Overview(context.Background(), "")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeAuthenticationError))
}

func TestNotes_ArrayBody(t *testing.T) {
	c := setupBackend(t, map[string]http.HandlerFunc{
		"GET /applications/app-1/notes": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `[{"id":"n1","content":"Looks good"}]`)
		},
	})

	notes, err := c.Notes(context.Background(), "jwt-1", "app-1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Looks good", notes[0].Content)
}

func TestMyApplication_ServerError(t *testing.T) {
	c := setupBackend(t, map[string]http.HandlerFunc{
		"GET /applications/my-application": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadGateway, `{"error":"Upstream unavailable"}`)
		},
	})

	_, err := c.MyApplication(context.Background(), "jwt-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNetworkError))
	assert.Equal(t, "Upstream unavailable", apperrors.UserMessage(err))
}

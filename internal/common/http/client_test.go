// internal/common/http/client_test.go
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "bursary-portal/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "thandi@example.com", in["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"t-1"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", time.Second)
	var out struct {
		Token string `json:"token"`
	}
	err := client.DoJSON(context.Background(), RequestOptions{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Token:  "abc",
		Body:   map[string]string{"email": "thandi@example.com"},
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, "t-1", out.Token)
}

func TestDoJSON_TranslatesStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode apperrors.ErrorCode
		wantMsg  string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad token"}`, apperrors.ErrCodeAuthenticationError, ""},
		{"server message", http.StatusBadRequest, `{"error":"Application not found"}`, apperrors.ErrCodeNetworkError, "Application not found"},
		{"no body", http.StatusInternalServerError, ``, apperrors.ErrCodeNetworkError, "HTTP error! status: 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(server.URL, time.Second).DoJSON(context.Background(), RequestOptions{Path: "/x"}, nil)
			require.Error(t, err)

			stdErr, ok := apperrors.AsStandard(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, stdErr.Message)
			}
		})
	}
}

func TestDoJSON_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	err := NewClient(server.URL, 20*time.Millisecond).DoJSON(context.Background(), RequestOptions{Path: "/slow"}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRequestTimeout))
}

func TestServerMessage(t *testing.T) {
	assert.Equal(t, "nope", ServerMessage([]byte(`{"error":"nope"}`)))
	assert.Equal(t, "fallback", ServerMessage([]byte(`{"message":"fallback"}`)))
	assert.Equal(t, "", ServerMessage([]byte(`<html>`)))
}

// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.org/api/")

	cfg, err := LoadFromFile(writeConfig(t, "app:\n  name: portal-test\n"))
	require.NoError(t, err)

	assert.Equal(t, "portal-test", cfg.App.Name)
	assert.Equal(t, "https://api.example.org/api", cfg.API.BaseURL)
	assert.Equal(t, 30000, cfg.API.Timeout)
	assert.Equal(t, "/applications/create", cfg.API.CreateEndpoint)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "bursary", cfg.Storage.Namespace)
	assert.Equal(t, int64(10<<20), cfg.Documents.MaxSizeBytes)
	assert.Equal(t, ":8080", cfg.Server.Address)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("PORTAL_TEST_BACKEND", "http://backend:5000")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadFromFile(writeConfig(t, `
api:
  base_url: ${PORTAL_TEST_BACKEND}
storage:
  driver: redis
  draft_ttl: 3600
database:
  redis:
    address: ${REDIS_ADDR}
`))
	require.NoError(t, err)
	assert.Equal(t, "http://backend:5000", cfg.API.BaseURL)
	assert.Equal(t, "redis:6379", cfg.Database.Redis.Address)
	assert.Equal(t, time.Hour, cfg.Storage.DraftTTLDuration())
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  string
		body string
	}{
		{"missing base url", "", "app:\n  name: x\n"},
		{"non-http base url", "ftp://files", "app:\n  name: x\n"},
		{"unknown driver", "http://api", "storage:\n  driver: postgres\n"},
		{"redis without address", "http://api", "storage:\n  driver: redis\n"},
		{"negative ttl", "http://api", "storage:\n  draft_ttl: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("API_BASE_URL", tt.env)
			t.Setenv("REDIS_ADDR", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

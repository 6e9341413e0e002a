// internal/server/config.go
package server

import (
	"time"

	"bursary-portal/internal/common/config"
)

type Config struct {
	MaxUploadBytes   int64
	MaxDocumentBytes int64
	RequestTimeout   time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	out := &Config{
		MaxUploadBytes:   32 << 20,
		MaxDocumentBytes: 10 << 20,
		RequestTimeout:   60 * time.Second,
	}
	if cfg == nil {
		return out
	}
	if cfg.Server.MaxUploadBytes > 0 {
		out.MaxUploadBytes = cfg.Server.MaxUploadBytes
	}
	if cfg.Documents.MaxSizeBytes > 0 {
		out.MaxDocumentBytes = cfg.Documents.MaxSizeBytes
	}
	if cfg.Server.WriteTimeout > 0 {
		out.RequestTimeout = config.GetDuration(cfg.Server.WriteTimeout)
	}
	return out
}

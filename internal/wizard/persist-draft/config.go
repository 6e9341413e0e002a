// internal/wizard/persist-draft/config.go
package persistdraft

import (
	"time"

	"bursary-portal/internal/common/config"
)

type Config struct {
	Namespace string
	TTL       time.Duration // zero keeps drafts until purged
}

func LoadConfig(cfg *config.Config) *Config {
	if cfg == nil {
		return &Config{Namespace: "bursary"}
	}
	return &Config{
		Namespace: cfg.Storage.Namespace,
		TTL:       cfg.Storage.DraftTTLDuration(),
	}
}

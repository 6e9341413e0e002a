// internal/wizard/submit-application/config.go
package submitapplication

import "bursary-portal/internal/common/config"

type Config struct {
	Endpoint string
}

func LoadConfig(cfg *config.Config) *Config {
	endpoint := "/applications/create"
	if cfg != nil && cfg.API.CreateEndpoint != "" {
		endpoint = cfg.API.CreateEndpoint
	}
	return &Config{Endpoint: endpoint}
}

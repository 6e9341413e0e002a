// internal/wizard/validate-fields/config.go
package validatefields

import "time"

type Config struct {
	// Now is the clock used by the date-based checks.
	Now func() time.Time
}

func LoadConfig() *Config {
	return &Config{
		Now: time.Now,
	}
}

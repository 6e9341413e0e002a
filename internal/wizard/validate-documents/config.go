// internal/wizard/validate-documents/config.go
package validatedocuments

type Config struct {
	MaxSizeBytes int64
}

func LoadConfig() *Config {
	return &Config{
		MaxSizeBytes: MaxFileSize,
	}
}

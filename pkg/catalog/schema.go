// pkg/catalog/schema.go
package catalog

// Catalog describes every wizard step, its fields and the document slots.
type Catalog struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Steps       []Step     `json:"steps"`
	Documents   []Document `json:"documents"`
	Upload      Upload     `json:"upload"`
}

type Step struct {
	Index  int     `json:"index"`
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

type Field struct {
	ID                    string `json:"id"`
	Label                 string `json:"label"`
	Required              bool   `json:"required"`
	ConditionallyRequired bool   `json:"conditionallyRequired,omitempty"`
	MinLength             int    `json:"minLength,omitempty"`
	MaxLength             int    `json:"maxLength,omitempty"`
	Pattern               string `json:"pattern,omitempty"`
	Message               string `json:"message,omitempty"`
}

type Document struct {
	Type      string `json:"type"`
	Label     string `json:"label"`
	Mandatory bool   `json:"mandatory"`
}

type Upload struct {
	MaxSizeBytes int64    `json:"maxSizeBytes"`
	AllowedTypes []string `json:"allowedTypes"`
}

// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"
)

// Rule is one entry of a static rule table. Zero values disable a check.
type Rule struct {
	Label     string
	Required  bool
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Message   string // shown when Pattern does not match
}

// Check runs the generic chain: required (on the trimmed value), then length,
// then pattern. An empty optional value passes. The first failure wins.
// required overrides rule.Required so callers can escalate conditionally.
func Check(rule Rule, value string, required bool) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if required {
			return fmt.Sprintf("%s is required", rule.Label)
		}
		return ""
	}

	length := utf8.RuneCountInString(trimmed)
	if rule.MinLength > 0 && length < rule.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", rule.Label, rule.MinLength)
	}
	if rule.MaxLength > 0 && length > rule.MaxLength {
		return fmt.Sprintf("%s must be no more than %d characters", rule.Label, rule.MaxLength)
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(trimmed) {
		if rule.Message != "" {
			return rule.Message
		}
		return fmt.Sprintf("%s is invalid", rule.Label)
	}
	return ""
}

// DigitsOnly strips everything that is not an ASCII digit.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateDocument checks data against a JSON schema given as a Go map.
// It returns the individual violations; a nil slice means valid.
func ValidateDocument(schemaMap map[string]interface{}, data interface{}) ([]string, error) {
	if len(schemaMap) == 0 {
		return nil, nil
	}

	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}
	errs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = desc.String()
	}
	return errs, nil
}

// ValidateJSON is ValidateDocument for raw JSON bytes.
func ValidateJSON(schemaMap map[string]interface{}, raw []byte) ([]string, error) {
	if len(schemaMap) == 0 {
		return nil, nil
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schemaMap), gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	errs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = desc.String()
	}
	return errs, nil
}

// internal/wizard/persist-draft/models.go
package persistdraft

// Keys of the persisted draft. Together they are the whole persisted-state contract.
const (
	KeyFormData = "bursary_form_data"
	KeyStep     = "bursary_form_step"
	KeySubjects = "bursary_form_subjects"

	// KeyToken holds the bearer token. It outlives Purge.
	KeyToken = "token"
)

// DraftKeys are removed by Purge.
var DraftKeys = []string{KeyFormData, KeyStep, KeySubjects}

// Schemas checked when a draft is rehydrated. A value that fails its schema
// is treated like a missing one.
var (
	formDataSchema = map[string]interface{}{
		"type": "object",
		"additionalProperties": map[string]interface{}{
			"type": "string",
		},
	}

	stepSchema = map[string]interface{}{
		"type":    "integer",
		"minimum": 0,
		"maximum": 3,
	}

	subjectsSchema = map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name":  map[string]interface{}{"type": "string"},
				"grade": map[string]interface{}{"type": "string"},
			},
			"required": []interface{}{"name", "grade"},
		},
	}
)

// SchemaFor returns the rehydration schema of key, or nil.
func SchemaFor(key string) map[string]interface{} {
	switch key {
	case KeyFormData:
		return formDataSchema
	case KeyStep:
		return stepSchema
	case KeySubjects:
		return subjectsSchema
	default:
		return nil
	}
}

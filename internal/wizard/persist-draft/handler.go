// internal/wizard/persist-draft/handler.go
package persistdraft

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "bursary-portal/internal/common/errors"
	"bursary-portal/internal/common/logger"
	"bursary-portal/internal/common/metrics"
	"bursary-portal/internal/common/validation"
	"bursary-portal/internal/models"
)

// Adapter reads and writes the wizard draft through a Store. Reads never fail:
// missing, unparsable or schema-invalid values fall back to defaults.
type Adapter struct {
	store  Store
	logger logger.Logger
}

func NewAdapter(store Store, log logger.Logger) *Adapter {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Adapter{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "persist-draft"}),
	}
}

// Draft is everything a wizard rehydrates on open.
type Draft struct {
	FormData   models.FormData
	ActiveStep models.Step
	Subjects   []models.Subject
}

// Load returns the value stored under key decoded into T, or def.
func Load[T any](ctx context.Context, a *Adapter, key string, def T) T {
	raw, ok, err := a.store.Get(ctx, key)
	if err != nil {
		a.fail("load", key, err)
		return def
	}
	if !ok {
		return def
	}

	if schema := SchemaFor(key); schema != nil {
		violations, err := validation.ValidateJSON(schema, []byte(raw))
		if err != nil || len(violations) > 0 {
			a.logger.Warn("discarding invalid draft value", map[string]interface{}{
				"key":        key,
				"violations": violations,
				"error":      err,
			})
			return def
		}
	}

	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		a.logger.Warn("discarding unparsable draft value", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		return def
	}
	return out
}

// LoadDraft rehydrates form data, step and subjects.
func (a *Adapter) LoadDraft(ctx context.Context) Draft {
	form := Load(ctx, a, KeyFormData, models.NewFormData()).Normalize()

	step := Load(ctx, a, KeyStep, models.StepPersonal)
	if !step.Valid() {
		step = models.StepPersonal
	}

	subjects := Load[[]models.Subject](ctx, a, KeySubjects, nil)
	if subjects == nil {
		subjects = []models.Subject{}
	}

	return Draft{FormData: form, ActiveStep: step, Subjects: subjects}
}

// Save writes value as JSON under key.
func (a *Adapter) Save(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		a.fail("save", key, err)
		return apperrors.NewPersistenceFailedError(key, err)
	}
	if err := a.store.Set(ctx, key, string(payload)); err != nil {
		a.fail("save", key, err)
		return apperrors.NewPersistenceFailedError(key, err)
	}
	return nil
}

// SaveDraft writes all three draft keys. Every key is attempted; the first
// error is returned.
func (a *Adapter) SaveDraft(ctx context.Context, d Draft) error {
	var first error
	for _, kv := range []struct {
		key   string
		value interface{}
	}{
		{KeyFormData, d.FormData},
		{KeyStep, d.ActiveStep},
		{KeySubjects, d.Subjects},
	} {
		if err := a.Save(ctx, kv.key, kv.value); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Purge removes the draft keys. The token is kept.
func (a *Adapter) Purge(ctx context.Context) error {
	if err := a.store.Delete(ctx, DraftKeys...); err != nil {
		a.fail("purge", strings.Join(DraftKeys, ","), err)
		return apperrors.NewPersistenceFailedError("draft", err)
	}
	return nil
}

// Token returns the stored bearer token, or "".
func (a *Adapter) Token(ctx context.Context) string {
	raw, ok, err := a.store.Get(ctx, KeyToken)
	if err != nil {
		a.fail("load", KeyToken, err)
		return ""
	}
	if !ok {
		return ""
	}
	return strings.TrimSpace(raw)
}

// SetToken stores the bearer token as a plain string.
func (a *Adapter) SetToken(ctx context.Context, token string) error {
	if err := a.store.Set(ctx, KeyToken, token); err != nil {
		a.fail("save", KeyToken, err)
		return apperrors.NewPersistenceFailedError(KeyToken, err)
	}
	return nil
}

// ClearToken removes the bearer token.
func (a *Adapter) ClearToken(ctx context.Context) error {
	if err := a.store.Delete(ctx, KeyToken); err != nil {
		a.fail("delete", KeyToken, err)
		return apperrors.NewPersistenceFailedError(KeyToken, err)
	}
	return nil
}

// Raw returns every known key as stored, for inspection tools.
func (a *Adapter) Raw(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)
	for _, key := range append(append([]string{}, DraftKeys...), KeyToken) {
		v, ok, err := a.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		if ok {
			out[key] = v
		}
	}
	return out, nil
}

func (a *Adapter) fail(op, key string, err error) {
	metrics.DraftStoreErrors.WithLabelValues(op, key).Inc()
	a.logger.Error("draft store operation failed", map[string]interface{}{
		"operation": op,
		"key":       key,
		"error":     err,
	})
}

// internal/wizard/submit-application/handler.go
package submitapplication

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"bursary-portal/internal/common/auth"
	apperrors "bursary-portal/internal/common/errors"
	commonhttp "bursary-portal/internal/common/http"
	"bursary-portal/internal/common/logger"
	"bursary-portal/internal/common/metrics"
	"bursary-portal/internal/common/observability"
	"bursary-portal/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Assembler builds the multipart body and posts it with the raw client:
// no wrapper timeout and no retry.
type Assembler struct {
	config *Config
	client *commonhttp.Client
	obs    *observability.Observability
	logger logger.Logger
	now    func() time.Time
}

func NewAssembler(config *Config, client *commonhttp.Client, obs *observability.Observability, log logger.Logger) *Assembler {
	if config == nil {
		config = LoadConfig(nil)
	}
	if obs == nil {
		obs = &observability.Observability{}
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Assembler{
		config: config,
		client: client,
		obs:    obs,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
	}
}

// Build writes the form fields in catalog order, then every uploaded document
// under its type key, then the additional documents, then the subject and
// previous-education lists as JSON text.
func Build(p *Payload) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for _, f := range models.FormFields {
		if err := w.WriteField(string(f), p.FormData.Get(f)); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f, err)
		}
	}

	for _, d := range models.DocumentTypes {
		slot := p.Documents[d]
		if slot.Empty() {
			continue
		}
		if err := writeFile(w, string(d), slot.File); err != nil {
			return nil, "", err
		}
	}

	for i, f := range p.AdditionalDocs {
		if f == nil {
			continue
		}
		if err := writeFile(w, additionalDocPrefix+strconv.Itoa(i), f); err != nil {
			return nil, "", err
		}
	}

	subjects := p.Subjects
	if subjects == nil {
		subjects = []models.Subject{}
	}
	if err := writeJSON(w, SubjectsField, subjects); err != nil {
		return nil, "", err
	}

	educations := p.PreviousEducations
	if educations == nil {
		educations = []models.PreviousEducation{}
	}
	if err := writeJSON(w, PreviousEducationsField, educations); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return body, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, field string, f *models.File) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(field), escapeQuotes(f.Name)))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", field, err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return fmt.Errorf("write part %s: %w", field, err)
	}
	return nil
}

func writeJSON(w *multipart.Writer, field string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", field, err)
	}
	return w.WriteField(field, string(payload))
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// Submit posts p to the create endpoint. A non-2xx response becomes a
// SUBMISSION_FAILED error carrying the server message or the generic one.
func (a *Assembler) Submit(ctx context.Context, p *Payload) (*models.SubmitResult, error) {
	ctx, span := a.obs.StartSpan(ctx, "application.submit", attribute.String("endpoint", a.config.Endpoint))
	defer span.End()

	start := time.Now()
	result, err := a.submit(ctx, p)
	duration := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = "failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, apperrors.UserMessage(err))
	}
	metrics.SubmissionsTotal.WithLabelValues(outcome).Inc()
	metrics.SubmissionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	a.obs.RecordSubmission(ctx, outcome, duration)

	return result, err
}

func (a *Assembler) submit(ctx context.Context, p *Payload) (*models.SubmitResult, error) {
	if err := auth.CheckUsable(p.Token, a.now()); err != nil {
		a.logger.Warn("submission without a usable token", map[string]interface{}{"error": err})
		return nil, err
	}

	body, contentType, err := Build(p)
	if err != nil {
		a.logger.Error("failed to assemble submission", map[string]interface{}{"error": err})
		return nil, apperrors.NewSubmissionFailedError("", 0)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.client.URL(a.config.Endpoint), body)
	if err != nil {
		a.logger.Error("failed to build submission request", map[string]interface{}{"error": err})
		return nil, apperrors.NewSubmissionFailedError("", 0)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+p.Token)

	a.logger.Info("submitting application", map[string]interface{}{
		"bytes":          body.Len(),
		"subjects":       len(p.Subjects),
		"additionalDocs": len(p.AdditionalDocs),
	})

	resp, err := a.client.DoWithContext(ctx, req)
	if err != nil {
		a.logger.Error("submission request failed", map[string]interface{}{"error": err})
		failed := apperrors.NewSubmissionFailedError("", 0)
		failed.Details = err.Error()
		return nil, failed
	}
	defer resp.Body.Close()

	// A 2xx means the backend accepted the application; a short body only
	// costs the result details.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		a.logger.Error("failed to read submission response", map[string]interface{}{
			"status": resp.StatusCode,
			"error":  err,
		})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := commonhttp.ServerMessage(raw)
		a.logger.Error("submission rejected", map[string]interface{}{
			"status":  resp.StatusCode,
			"message": msg,
		})
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, apperrors.NewAuthenticationError(msg)
		}
		return nil, apperrors.NewSubmissionFailedError(msg, resp.StatusCode)
	}

	result := &models.SubmitResult{}
	if len(bytes.TrimSpace(raw)) > 0 {
		var decoded map[string]interface{}
		if err := json.Unmarshal(raw, &decoded); err != nil {
			a.logger.Warn("submission response is not JSON", map[string]interface{}{"error": err})
		} else {
			result.Raw = decoded
			result.ID = firstString(decoded, "id", "applicationId", "_id")
			result.Message = firstString(decoded, "message")
		}
	}

	a.logger.Info("application submitted", map[string]interface{}{"applicationId": result.ID})
	return result, nil
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			switch t := v.(type) {
			case string:
				return t
			case float64:
				return strconv.FormatFloat(t, 'f', -1, 64)
			}
		}
	}
	if app, ok := m["application"].(map[string]interface{}); ok {
		return firstString(app, keys...)
	}
	return ""
}

// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "bursary-portal/internal/common/errors"
)

// Client wraps net/http. Do and DoWithContext are raw calls with no timeout of
// their own; DoJSON is the request wrapper with a per-call timeout and error
// translation.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
	}
}

// WithHTTPClient swaps the underlying client, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins path onto the base URL.
func (c *Client) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}

// RequestOptions describes one JSON call.
type RequestOptions struct {
	Method string
	Path   string
	Token  string
	Body   interface{}
}

// DoJSON sends a JSON request, aborts it after the client timeout and decodes
// a 2xx body into out. Failures come back as *errors.StandardError.
func (c *Client) DoJSON(ctx context.Context, opts RequestOptions, out interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return apperrors.NewInvalidInputError(fmt.Sprintf("encode request body: %v", err))
		}
		body = bytes.NewReader(payload)
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, c.URL(opts.Path), body)
	if err != nil {
		return apperrors.NewInvalidInputError(err.Error())
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return apperrors.NewTimeoutError(opts.Path, err)
		}
		return apperrors.NewNetworkError(opts.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewNetworkError(opts.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return translateStatus(opts.Path, resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewNetworkError(opts.Path, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// ServerMessage extracts the "error" (or "message") field of a JSON error body.
func ServerMessage(raw []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}

func translateStatus(path string, status int, raw []byte) error {
	msg := ServerMessage(raw)
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.NewAuthenticationError(fmt.Sprintf("%s: %s", path, msg))
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return apperrors.NewTimeoutError(path, fmt.Errorf("status %d", status))
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP error! status: %d", status)
	}
	return &apperrors.StandardError{
		Code:      apperrors.ErrCodeNetworkError,
		Message:   msg,
		Details:   fmt.Sprintf("path: %s, status: %d", path, status),
		Retryable: status >= 500,
		Metadata:  map[string]interface{}{"status": status},
		Timestamp: time.Now().UTC(),
	}
}

// Package aiclient holds the HTTP clients for the four external AI
// collaborators: resume parser, job extractor, letter generator and scorer.
// No retries anywhere: a failed call terminates at the step boundary and
// the user re-submits explicitly.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/DeUskov/rezumy09/internal/config"
	"github.com/DeUskov/rezumy09/internal/metrics"
)

// Client calls the external AI services. All requests carry the shared
// service key as a bearer token.
type Client struct {
	cfg  config.Collaborators
	http *http.Client
	log  *zap.Logger
}

// New builds a collaborator client. The per-call deadlines come from the
// config, so the underlying http.Client carries no timeout of its own.
func New(cfg config.Collaborators, log *zap.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{},
		log:  log,
	}
}

// postJSON sends a JSON payload and returns the raw response body. Non-2xx
// responses become *APIError with the body's error/message field when the
// body is JSON, or the raw text otherwise.
func (c *Client) postJSON(ctx context.Context, collaborator, url string, payload any, timeout time.Duration) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return c.post(ctx, collaborator, url, "application/json", bytes.NewReader(body), timeout)
}

func (c *Client) post(ctx context.Context, collaborator, url, contentType string, body io.Reader, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.cfg.ServiceKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.ServiceKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		classified := classifyTransport(err)
		metrics.ObserveCollaborator(collaborator, start, failureKind(classified))
		return nil, classified
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn("failed to close response body", zap.String("collaborator", collaborator), zap.Error(cerr))
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveCollaborator(collaborator, start, "read")
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveCollaborator(collaborator, start, "status")
		return nil, &APIError{
			Collaborator: collaborator,
			StatusCode:   resp.StatusCode,
			Message:      errorMessage(raw),
		}
	}

	metrics.ObserveCollaborator(collaborator, start, "")
	return raw, nil
}

// errorMessage digs an error or message field out of a JSON error body,
// falling back to the raw text.
func errorMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return string(raw)
}

func failureKind(err error) string {
	if err == nil {
		return ""
	}
	if isTimeout(err) {
		return "timeout"
	}
	return "network"
}

func isTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

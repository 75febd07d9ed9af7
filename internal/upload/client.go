// Package upload talks to the external image-storage service.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/caseforge/caseforge/pkg/retry"
)

// DefaultTimeout bounds a single upload attempt.
const DefaultTimeout = 30 * time.Second

// TransientError marks an upload failure worth retrying.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("transient upload failure: %v", e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is worth another attempt.
func IsTransient(err error) bool {
	var transientErr *TransientError
	return errors.As(err, &transientErr)
}

// Client uploads image files to the storage service and returns their public
// URLs.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	policy     retry.Policy
	logger     *slog.Logger
}

// ClientConfig holds configuration for the upload client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration // Optional: defaults to DefaultTimeout
	Policy  retry.Policy  // Optional: defaults to retry.DefaultPolicy with the transient predicate
}

// NewClient creates a new storage client.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	policy := cfg.Policy
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultPolicy()
	}
	if policy.Retryable == nil {
		policy.Retryable = IsTransient
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		policy:     policy,
		logger:     logger,
	}
}

type storeResponse struct {
	URL string `json:"url"`
}

// Store uploads a single file tagged with its configuration ID and returns
// the public URL assigned by the storage service. Transient failures are
// retried under the client's policy.
func (c *Client) Store(ctx context.Context, filename string, data []byte, configID uuid.UUID) (string, error) {
	return retry.DoValue(ctx, c.policy, func(ctx context.Context) (string, error) {
		return c.store(ctx, filename, data, configID)
	})
}

func (c *Client) store(ctx context.Context, filename string, data []byte, configID uuid.UUID) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	if err := writer.WriteField("configId", configID.String()); err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransientError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
	case resp.StatusCode >= http.StatusInternalServerError:
		return "", &TransientError{Err: fmt.Errorf("storage service returned %d", resp.StatusCode)}
	default:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("storage service rejected upload: %d %s", resp.StatusCode, payload)
	}

	var decoded storeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if decoded.URL == "" {
		return "", errors.New("storage service returned no URL")
	}

	c.logger.Debug("upload_stored", "config_id", configID, "url", decoded.URL, "bytes", len(data))
	return decoded.URL, nil
}

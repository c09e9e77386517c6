package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/contact-importer/internal/domain/importer/projector"
)

const (
	importPath = "/admin/contacts-import-data"

	// maxResponseBytes bounds how much of an error body is read back.
	maxResponseBytes = 1 << 20

	retryBaseDelay    = 250 * time.Millisecond
	maxTransportTries = 3
)

// Config holds the client settings for the contact store.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// RequestsPerSecond paces batch submissions; zero disables pacing.
	RequestsPerSecond float64
}

// Client talks to the contact store's bulk import endpoint. Batches are
// submitted one at a time by the orchestrator; the client only adds
// transport-level retry and pacing.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a store client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		logger:     logger,
	}
}

// importRequest mirrors the store's contract: skipActivityLog suppresses
// the per-batch activity entry so the run records a single audit entry at
// the end instead.
type importRequest struct {
	Data                       []projector.ProjectedRow `json:"data"`
	SkipActivityLog            bool                     `json:"skipActivityLog,omitempty"`
	CreateActivityLogWithTotal int                      `json:"createActivityLogWithTotal,omitempty"`
}

// ImportBatch submits one batch of projected rows. A duplicate-conflict
// response comes back as *ConflictError; any other non-2xx response is a
// generic error the caller folds into the batch outcome.
func (c *Client) ImportBatch(ctx context.Context, rows []projector.ProjectedRow) (*BatchResult, error) {
	body, err := json.Marshal(importRequest{Data: rows, SkipActivityLog: true})
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch: %w", err)
	}

	resp, err := c.post(ctx, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read import response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.classifyError(resp.StatusCode, payload)
	}

	var result BatchResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode import response: %w", err)
	}
	return &result, nil
}

// RecordActivityLog asks the store to record one audit entry carrying only
// the final imported total. Best effort; callers ignore the outcome.
func (c *Client) RecordActivityLog(ctx context.Context, totalImported int) error {
	body, err := json.Marshal(importRequest{
		Data:                       []projector.ProjectedRow{},
		CreateActivityLogWithTotal: totalImported,
	})
	if err != nil {
		return fmt.Errorf("failed to encode activity log request: %w", err)
	}

	resp, err := c.post(ctx, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("activity log request failed with status %d", resp.StatusCode)
	}
	return nil
}

// post sends the request, pacing through the limiter and retrying
// transport-level failures. A received HTTP response is never retried;
// status handling belongs to the caller.
func (c *Client) post(ctx context.Context, body []byte) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var resp *http.Response
	backoff := retry.WithMaxRetries(maxTransportTries, retry.NewExponential(retryBaseDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+importPath, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err = c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("store request failed, retrying", slog.Any("error", err))
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store request failed: %w", err)
	}
	return resp, nil
}

// classifyError turns a non-2xx response into either a ConflictError or a
// generic error carrying the store's message.
func (c *Client) classifyError(status int, body []byte) error {
	var payload errorPayload
	_ = json.Unmarshal(body, &payload)

	if isDuplicatePayload(&payload) {
		return &ConflictError{
			Message:        payload.Message,
			ExistingEmails: payload.ExistingEmails,
		}
	}

	if payload.Message != "" {
		return fmt.Errorf("import rejected (status %d): %s", status, payload.Message)
	}
	return fmt.Errorf("import rejected with status %d", status)
}

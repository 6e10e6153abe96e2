package bankapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Veraticus/statement-flow/internal/common"
	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/google/uuid"
)

// maxErrorBody bounds how much of an error response is kept in messages.
const maxErrorBody = 512

// Client talks to one provider's statement backend.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	cfg        Config
}

// NewClient validates cfg and creates a client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     common.ComponentLogger("bankapi").With("provider", string(cfg.Provider)),
	}, nil
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// Provider returns the provider this client is configured for.
func (c *Client) Provider() model.ProviderKind {
	return c.cfg.Provider
}

// envelope is the response wrapper shared by every endpoint.
type envelope struct {
	Pagination *pagination     `json:"pagination"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Success    bool            `json:"success"`
}

type pagination struct {
	Total       int  `json:"total"`
	Limit       int  `json:"limit"`
	Offset      int  `json:"offset"`
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	HasMore     bool `json:"has_more"`
}

func (e *envelope) failure() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Error != "" {
		return e.Error
	}
	return "success=false"
}

// do sends one request with retries and decodes the envelope. Only idempotent
// requests are retried on server errors; rate limits are always retried.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, idempotent bool) (*envelope, error) {
	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	var env *envelope
	err := common.WithRetry(ctx, func() error {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		requestID := uuid.NewString()
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		c.logger.Debug("Statement API request",
			"method", method,
			"path", path,
			"request_id", requestID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return common.Retryable(fmt.Errorf("%w: %w", common.ErrRemoteFailure, err))
		}
		defer resp.Body.Close()

		if err := statusError(resp, requestID, idempotent); err != nil {
			return err
		}

		decoded, err := decodeEnvelope(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: %w", common.ErrRemoteFailure, err)
		}
		env = decoded
		return nil
	}, c.cfg.Retry)
	if err != nil {
		return nil, err
	}
	return env, nil
}

func statusError(resp *http.Response, requestID string, idempotent bool) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := strings.TrimSpace(string(raw))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d (request %s)", common.ErrUnauthorized, resp.StatusCode, requestID)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: status %d (request %s)", common.ErrNotFound, resp.StatusCode, requestID)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d (request %s)", common.ErrRateLimit, resp.StatusCode, requestID)
	case resp.StatusCode >= 500:
		err := fmt.Errorf("%w: status %d: %s (request %s)", common.ErrRemoteFailure, resp.StatusCode, detail, requestID)
		if idempotent {
			return common.Retryable(err)
		}
		return err
	default:
		return fmt.Errorf("%w: status %d: %s (request %s)", common.ErrRemoteFailure, resp.StatusCode, detail, requestID)
	}
}

func decodeEnvelope(r io.Reader) (*envelope, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &env, nil
}

// decodeRecords reads a JSON array (or single object) of records, keeping
// numbers as json.Number so amounts are not rounded through float64.
func decodeRecords(data json.RawMessage) ([]model.RawRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if trimmed[0] == '{' {
		var one model.RawRecord
		if err := dec.Decode(&one); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		return []model.RawRecord{one}, nil
	}

	var many []model.RawRecord
	if err := dec.Decode(&many); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return many, nil
}

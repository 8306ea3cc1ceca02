package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultHTTPTimeout = 2 * time.Minute
	unknownError       = "Unknown error occurred"
)

var errNotConfigured = errors.New("content API is not configured: set CARDSTUDIO_API_URL and CARDSTUDIO_API_KEY")

// Envelope is the normalized result of one generate call. Data is only
// meaningful when Success is true, Error only when it is false.
type Envelope struct {
	Success bool
	Data    *Payload
	Error   string
}

// Config describes how to reach the content service.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client issues generate requests against the content service.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// New builds a Client. A missing base URL or key is not an error here; every
// request made by such a client fails with an envelope error instead.
func New(cfg Config) *Client {
	client := cfg.HTTPClient
	if client == nil {
		// Generation scrapes and summarizes upstream, it routinely takes longer than a minute.
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		client:  client,
		logger:  logger,
	}
}

// Configured reports whether both the base URL and the API key are set.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// Generate requests card content for topic. It never returns an error: every
// failure is folded into the envelope.
func (c *Client) Generate(ctx context.Context, topic string, rng Range) Envelope {
	started := time.Now()
	payload, status, err := c.generate(ctx, topic, rng)
	fields := []zap.Field{
		zap.String("topic", topic),
		zap.String("range", rng.String()),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(started)),
	}
	if err != nil {
		c.logger.Warn("generate request failed", append(fields, zap.Error(err))...)
		return Envelope{Success: false, Error: errorMessage(err)}
	}
	c.logger.Info("generate request succeeded", append(fields, zap.Int("cards", len(payload.Cards)))...)
	return Envelope{Success: true, Data: payload}
}

func (c *Client) generate(ctx context.Context, topic string, rng Range) (*Payload, int, error) {
	if !c.Configured() {
		return nil, 0, errNotConfigured
	}
	url := fmt.Sprintf("%s/generate?q=%s&range=%s", c.baseURL, EncodeComponent(topic), EncodeComponent(rng.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, statusError(resp.StatusCode, body)
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode content response: %w", err)
	}
	return &payload, resp.StatusCode, nil
}

func statusError(status int, body []byte) error {
	var detail struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &detail); err == nil {
		if msg := detailMessage(detail.Detail); msg != "" {
			return errors.New(msg)
		}
	}
	return fmt.Errorf("Error: %d", status)
}

// detailMessage accepts the plain string form of detail and falls back to the
// raw JSON for validation errors, which the service reports as a list.
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(string(raw))
}

func errorMessage(err error) string {
	if err == nil {
		return unknownError
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return unknownError
}

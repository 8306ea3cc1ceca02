package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Health mirrors the service's /health report.
type Health struct {
	Mongo string `json:"mongo"`
	Proxy string `json:"proxy"`
}

// OK reports whether every dependency answered "ok".
func (h Health) OK() bool {
	return h.Mongo == "ok" && h.Proxy == "ok"
}

// Health queries the service's health endpoint. Unlike Generate it returns a
// plain error because it is only used by the CLI.
func (c *Client) Health(ctx context.Context) (Health, error) {
	if c.baseURL == "" {
		return Health{}, errNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return Health{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Health{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Health{}, fmt.Errorf("health check failed: %s (%s)", resp.Status, string(body))
	}
	var health Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return Health{}, fmt.Errorf("failed to decode health response: %w", err)
	}
	return health, nil
}

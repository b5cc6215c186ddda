package ycatlas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Health reports the status of the server's dependencies. A degraded server
// answers 503 but still returns the per-component breakdown, so a degraded
// report is data, not an error.
func (c *Client) Health(ctx context.Context) (h Health, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return Health{}, fmt.Errorf("ycatlas: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Health{}, fmt.Errorf("ycatlas: GET /healthz: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		err = apiErrorFrom(resp)
		return Health{}, err
	}
	if err = json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return Health{}, fmt.Errorf("ycatlas: decode response: %w", err)
	}
	return h, nil
}

// Package firecrawl scrapes company websites through a Firecrawl-compatible API.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/seedscope/ycatlas/internal/domain"
)

// Client talks to the /v1/scrape endpoint of a Firecrawl-compatible server.
type Client struct {
	apiKey string
	url    string
	httpc  *http.Client
	logger *zap.Logger
}

// Config holds the scrape provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// New creates a scrape client.
func New(cfg *Config) *Client {
	return &Client{
		apiKey: cfg.APIKey,
		url:    cfg.BaseURL + "/v1/scrape",
		httpc:  &http.Client{Timeout: cfg.Timeout},
		logger: cfg.Logger,
	}
}

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
}

// Scrape fetches pageURL and returns its content rendered as markdown.
func (c *Client) Scrape(ctx context.Context, pageURL string) (string, error) {
	body, err := json.Marshal(scrapeRequest{URL: pageURL, Formats: []string{"markdown"}})
	if err != nil {
		return "", fmt.Errorf("marshal scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new scrape request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("scrape request failed: %v: %w", err, domain.ErrScrapeProviderError)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", parseScrapeError(resp)
	}

	var parsed scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode scrape response: %v: %w", err, domain.ErrScrapeProviderError)
	}
	if !parsed.Success {
		return "", fmt.Errorf("scrape rejected: %s: %w", parsed.Error, domain.ErrScrapeProviderError)
	}
	if parsed.Data.Markdown == "" {
		return "", fmt.Errorf("empty scrape result for %s: %w", pageURL, domain.ErrScrapeProviderError)
	}

	c.logger.Debug("page scraped",
		zap.String("url", pageURL),
		zap.Int("markdown_bytes", len(parsed.Data.Markdown)),
		zap.Duration("duration", time.Since(start)),
	)
	return parsed.Data.Markdown, nil
}

// parseScrapeError extracts the provider message from a non-200 response.
func parseScrapeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var parsed scrapeResponse
	if json.Unmarshal(raw, &parsed) == nil && parsed.Error != "" {
		return fmt.Errorf("scrape API error %d: %s: %w", resp.StatusCode, parsed.Error, domain.ErrScrapeProviderError)
	}
	return fmt.Errorf("scrape API error %d: %w", resp.StatusCode, domain.ErrScrapeProviderError)
}

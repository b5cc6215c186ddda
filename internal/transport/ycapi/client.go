// Package ycapi fetches the published YC company directory.
package ycapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/seedscope/ycatlas/internal/domain"
	"github.com/seedscope/ycatlas/internal/domain/company"
)

// Client downloads the directory dump served as one JSON array.
type Client struct {
	url    string
	httpc  *http.Client
	logger *zap.Logger
}

// Config holds the directory source settings.
type Config struct {
	SourceURL string
	Timeout   time.Duration
	Logger    *zap.Logger
}

// New creates a directory client.
func New(cfg *Config) *Client {
	return &Client{
		url:    cfg.SourceURL,
		httpc:  &http.Client{Timeout: cfg.Timeout},
		logger: cfg.Logger,
	}
}

// directoryCompany mirrors one upstream document. The upstream feed mixes
// naming styles: most fields are snake_case but the hiring flag is camelCase.
type directoryCompany struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	Website         string   `json:"website"`
	OneLiner        string   `json:"one_liner"`
	LongDescription string   `json:"long_description"`
	Batch           string   `json:"batch"`
	Status          string   `json:"status"`
	Stage           string   `json:"stage"`
	Industry        string   `json:"industry"`
	Industries      []string `json:"industries"`
	Regions         []string `json:"regions"`
	Tags            []string `json:"tags"`
	LaunchedAt      int64    `json:"launched_at"` // unix seconds, 0 when unknown
	TeamSize        *int64   `json:"team_size"`
	IsHiring        bool     `json:"isHiring"`
	Nonprofit       bool     `json:"nonprofit"`
	TopCompany      bool     `json:"top_company"`
}

// FetchAll downloads the full directory and maps it to domain records.
// Records without an id or name are dropped with a warn log.
func (c *Client) FetchAll(ctx context.Context) ([]company.Company, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("new directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch directory: %v: %w", err, domain.ErrSyncSourceError)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory source status %d: %w", resp.StatusCode, domain.ErrSyncSourceError)
	}

	var docs []directoryCompany
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode directory: %v: %w", err, domain.ErrSyncSourceError)
	}

	out := make([]company.Company, 0, len(docs))
	dropped := 0
	for _, d := range docs {
		if d.ID == 0 || d.Name == "" {
			dropped++
			continue
		}
		out = append(out, d.toDomain())
	}
	if dropped > 0 {
		c.logger.Warn("Dropped malformed directory records", zap.Int("count", dropped))
	}

	c.logger.Info("Directory fetched",
		zap.Int("companies", len(out)),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}

func (d directoryCompany) toDomain() company.Company {
	c := company.Company{
		ID:              d.ID,
		Name:            d.Name,
		Slug:            d.Slug,
		Website:         d.Website,
		OneLiner:        d.OneLiner,
		LongDescription: d.LongDescription,
		Batch:           d.Batch,
		Status:          d.Status,
		Stage:           d.Stage,
		Industry:        d.Industry,
		Industries:      d.Industries,
		Regions:         d.Regions,
		Tags:            d.Tags,
		TeamSize:        d.TeamSize,
		IsHiring:        d.IsHiring,
		Nonprofit:       d.Nonprofit,
		TopCompany:      d.TopCompany,
	}
	if d.LaunchedAt > 0 {
		t := time.Unix(d.LaunchedAt, 0).UTC()
		c.LaunchedAt = &t
	}
	return c
}

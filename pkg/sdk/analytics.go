package ycatlas

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ColorBy selects the stacking dimension for analytics rows.
type ColorBy string

// Supported color-by dimensions.
const (
	ColorByNone       ColorBy = "none"
	ColorByTags       ColorBy = "tags"
	ColorByIndustries ColorBy = "industries"
)

// AnalyticsParams scopes a batch analytics request. The cohort is the
// explicit IDs when given, otherwise every company matching Query and
// Filters. TopN bounds the number of stacked categories; zero uses the
// server default.
type AnalyticsParams struct {
	Query   string  `json:"query,omitempty"`
	Filters Filters `json:"filters"`
	IDs     []int64 `json:"ids,omitempty"`
	ColorBy ColorBy `json:"colorBy,omitempty"`
	TopN    int     `json:"topN,omitempty"`
}

// AnalyticsRow is one batch in chronological order. Categories holds the
// per-category counts, including the "Other" remainder, when a color-by
// dimension is set; it is nil otherwise.
type AnalyticsRow struct {
	Batch      string
	Total      int
	Categories map[string]int
}

// UnmarshalJSON decodes the server's flattened row shape
// {"batch":..., "total":..., "<category>":n, ...}.
func (r *AnalyticsRow) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["batch"]; ok {
		if err := json.Unmarshal(v, &r.Batch); err != nil {
			return fmt.Errorf("batch: %w", err)
		}
		delete(raw, "batch")
	}
	if v, ok := raw["total"]; ok {
		if err := json.Unmarshal(v, &r.Total); err != nil {
			return fmt.Errorf("total: %w", err)
		}
		delete(raw, "total")
	}
	if len(raw) == 0 {
		return nil
	}
	r.Categories = make(map[string]int, len(raw))
	for name, v := range raw {
		var n int
		if err := json.Unmarshal(v, &n); err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		r.Categories[name] = n
	}
	return nil
}

// AnalyticsResult is the per-batch company distribution. Series lists the
// category names in display order when a color-by dimension is set.
type AnalyticsResult struct {
	ColorBy        ColorBy        `json:"colorBy"`
	TotalCompanies int            `json:"totalCompanies"`
	Series         []string       `json:"series"`
	Rows           []AnalyticsRow `json:"rows"`
}

// Analytics aggregates the company distribution across YC batches.
func (c *Client) Analytics(ctx context.Context, p AnalyticsParams) (res AnalyticsResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("analytics", start, err) }()

	err = c.post(ctx, "/api/analytics", p, &res)
	return res, err
}

package ycatlas

import (
	"context"
	"net/url"
	"time"
)

// UsagePeriod is the reporting window for usage reports.
type UsagePeriod string

// Usage periods.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
)

// UsageReport is the embedding token spend against the configured budget for
// one period. A zero TokensLimit means no budget is configured;
// TokensRemaining is -1 in that case.
type UsageReport struct {
	Period          UsagePeriod
	Provider        string
	PeriodStart     time.Time
	PeriodEnd       time.Time
	TokensLimit     int64
	TokensUsed      int64
	TokensRemaining int64
	Exhausted       bool
	ResetsAt        time.Time
}

type usageWire struct {
	Period          string `json:"period"`
	Provider        string `json:"provider"`
	PeriodStart     int64  `json:"periodStart"`
	PeriodEnd       int64  `json:"periodEnd"`
	TokensLimit     int64  `json:"tokensLimit"`
	TokensUsed      int64  `json:"tokensUsed"`
	TokensRemaining int64  `json:"tokensRemaining"`
	Exhausted       bool   `json:"exhausted"`
	ResetsAt        int64  `json:"resetsAt"`
}

// Usage returns the embedding budget state for the given period.
// An empty period defaults to day.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) (rep UsageReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, err) }()

	q := url.Values{}
	if period != "" {
		q.Set("period", string(period))
	}
	var wire usageWire
	if err = c.get(ctx, "/api/usage", q, &wire); err != nil {
		return UsageReport{}, err
	}
	return UsageReport{
		Period:          UsagePeriod(wire.Period),
		Provider:        wire.Provider,
		PeriodStart:     time.UnixMilli(wire.PeriodStart).UTC(),
		PeriodEnd:       time.UnixMilli(wire.PeriodEnd).UTC(),
		TokensLimit:     wire.TokensLimit,
		TokensUsed:      wire.TokensUsed,
		TokensRemaining: wire.TokensRemaining,
		Exhausted:       wire.Exhausted,
		ResetsAt:        time.UnixMilli(wire.ResetsAt).UTC(),
	}, nil
}

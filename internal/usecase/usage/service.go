// Package usage reports embedding token spend against the configured budget.
package usage

import (
	"context"
	"time"
)

// Period selects the reporting window.
type Period string

const (
	// PeriodDay reports the current UTC calendar day.
	PeriodDay Period = "day"
	// PeriodMonth reports the current UTC calendar month.
	PeriodMonth Period = "month"
)

// ParsePeriod maps a query value onto a Period, defaulting to day.
func ParsePeriod(s string) Period {
	if s == string(PeriodMonth) {
		return PeriodMonth
	}
	return PeriodDay
}

// Report is the budget state for one period. A zero limit means unlimited;
// remaining is -1 in that case. Timestamps are unix milliseconds in UTC.
type Report struct {
	Period          Period `json:"period"`
	Provider        string `json:"provider"`
	PeriodStart     int64  `json:"periodStart"`
	PeriodEnd       int64  `json:"periodEnd"`
	TokensLimit     int64  `json:"tokensLimit"`
	TokensUsed      int64  `json:"tokensUsed"`
	TokensRemaining int64  `json:"tokensRemaining"`
	Exhausted       bool   `json:"exhausted"`
	ResetsAt        int64  `json:"resetsAt"`
}

// Service builds usage reports from the budget tracker.
type Service struct {
	br       BudgetReader
	provider string
}

// New creates a Service. br may be nil when no budget is configured; reports
// then show zero limits and usage.
func New(br BudgetReader, provider string) *Service {
	return &Service{br: br, provider: provider}
}

// GetReport returns the budget state for the requested period. The period
// resets at the next UTC day or month boundary.
func (s *Service) GetReport(_ context.Context, period Period) Report {
	now := time.Now().UTC()

	var start, end time.Time
	var limit, used, remaining int64

	switch period {
	case PeriodMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
		if s.br != nil {
			limit = s.br.MonthlyLimit()
			used = s.br.MonthlyUsed()
			remaining = s.br.RemainingMonthly()
		}
	default:
		period = PeriodDay
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.Add(24 * time.Hour)
		if s.br != nil {
			limit = s.br.DailyLimit()
			used = s.br.DailyUsed()
			remaining = s.br.RemainingDaily()
		}
	}

	return Report{
		Period:          period,
		Provider:        s.provider,
		PeriodStart:     start.UnixMilli(),
		PeriodEnd:       end.UnixMilli(),
		TokensLimit:     limit,
		TokensUsed:      used,
		TokensRemaining: remaining,
		Exhausted:       limit > 0 && remaining <= 0,
		ResetsAt:        end.UnixMilli(),
	}
}

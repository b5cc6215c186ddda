package chi

import (
	"context"

	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
	"github.com/seedscope/ycatlas/internal/domain/search/request"
	"github.com/seedscope/ycatlas/internal/usecase/analytics"
	"github.com/seedscope/ycatlas/internal/usecase/chat"
	healthuc "github.com/seedscope/ycatlas/internal/usecase/health"
	"github.com/seedscope/ycatlas/internal/usecase/projection"
	usageuc "github.com/seedscope/ycatlas/internal/usecase/usage"
)

// Searcher runs keyword and semantic company searches.
type Searcher interface {
	Keyword(ctx context.Context, req request.Search) (company.SearchPage, error)
	Semantic(ctx context.Context, req request.Search) (company.SearchPage, error)
	Similar(ctx context.Context, companyID int64, limit int) ([]company.Hit, error)
}

// FacetReader aggregates filterable dimension counts.
type FacetReader interface {
	Get(ctx context.Context) (company.Facets, error)
}

// AnalyticsEngine computes batch cohort analytics.
type AnalyticsEngine interface {
	Batches(ctx context.Context, p analytics.Params) (analytics.Result, error)
}

// MapBuilder lays out one company and its neighbors on the embedding map.
type MapBuilder interface {
	EmbeddingMap(ctx context.Context, companyID int64, similarLimit int) (*projection.Map, error)
}

// CompanyReader loads single-company detail. Satisfied by
// *companies.Repository.
type CompanyReader interface {
	Detail(ctx context.Context, id int64) (*company.Detail, error)
}

// Asker answers directory questions grounded in retrieved companies.
type Asker interface {
	Ask(ctx context.Context, question string, fs filters.Set) (chat.Answer, error)
}

// UsageReporter reports embedding token spend per period.
type UsageReporter interface {
	GetReport(ctx context.Context, period usageuc.Period) usageuc.Report
}

// HealthChecker aggregates component liveness.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

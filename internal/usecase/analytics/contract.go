package analytics

import (
	"context"

	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
	"github.com/seedscope/ycatlas/internal/domain/search/request"
)

// Repository resolves analytics candidate sets.
type Repository interface {
	List(ctx context.Context, query string, fs filters.Set, sort request.Sort, limit, offset int) ([]company.Company, error)
	ListByIDs(ctx context.Context, ids []int64) ([]company.Company, error)
}

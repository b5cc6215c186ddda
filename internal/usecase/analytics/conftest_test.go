package analytics

import (
	"context"

	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
	"github.com/seedscope/ycatlas/internal/domain/search/request"
)

// --- Mocks ---

type mockRepo struct {
	listFn      func(ctx context.Context, query string, fs filters.Set, sort request.Sort, limit, offset int) ([]company.Company, error)
	listByIDsFn func(ctx context.Context, ids []int64) ([]company.Company, error)
}

func (m *mockRepo) List(ctx context.Context, query string, fs filters.Set, sort request.Sort, limit, offset int) ([]company.Company, error) {
	return m.listFn(ctx, query, fs, sort, limit, offset)
}

func (m *mockRepo) ListByIDs(ctx context.Context, ids []int64) ([]company.Company, error) {
	return m.listByIDsFn(ctx, ids)
}

// corpusRepo serves a fixed candidate set regardless of filters.
func corpusRepo(rows []company.Company) *mockRepo {
	return &mockRepo{
		listFn: func(_ context.Context, _ string, _ filters.Set, _ request.Sort, _, _ int) ([]company.Company, error) {
			return rows, nil
		},
		listByIDsFn: func(_ context.Context, ids []int64) ([]company.Company, error) {
			var out []company.Company
			for _, id := range ids {
				for _, c := range rows {
					if c.ID == id {
						out = append(out, c)
					}
				}
			}
			return out, nil
		},
	}
}

func mkCompany(id int64, batch string, tags ...string) company.Company {
	return company.Company{ID: id, Batch: batch, Tags: tags}
}

package search

import (
	"context"

	"github.com/seedscope/ycatlas/internal/domain"
	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
	"github.com/seedscope/ycatlas/internal/domain/search/request"
)

// --- Mocks ---

type mockRepo struct {
	listFn         func(ctx context.Context, query string, fs filters.Set, sort request.Sort, limit, offset int) ([]company.Company, error)
	countFn        func(ctx context.Context, query string, fs filters.Set) (int, error)
	listEmbeddedFn func(ctx context.Context, fs filters.Set) ([]company.Embedded, error)
}

func (m *mockRepo) List(ctx context.Context, query string, fs filters.Set, sort request.Sort, limit, offset int) ([]company.Company, error) {
	return m.listFn(ctx, query, fs, sort, limit, offset)
}

func (m *mockRepo) Count(ctx context.Context, query string, fs filters.Set) (int, error) {
	return m.countFn(ctx, query, fs)
}

func (m *mockRepo) ListEmbedded(ctx context.Context, fs filters.Set) ([]company.Embedded, error) {
	return m.listEmbeddedFn(ctx, fs)
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func embedded(id int64, name string, vector ...float64) company.Embedded {
	return company.Embedded{
		Company: company.Company{ID: id, Name: name},
		Vector:  vector,
	}
}

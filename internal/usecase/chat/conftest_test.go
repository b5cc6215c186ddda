package chat

import (
	"context"

	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
)

// --- Mocks ---

type mockSearcher struct {
	topIDsFn func(ctx context.Context, query string, fs filters.Set, k int) ([]int64, error)
	calls    int
}

func (m *mockSearcher) TopIDs(ctx context.Context, query string, fs filters.Set, k int) ([]int64, error) {
	m.calls++
	return m.topIDsFn(ctx, query, fs, k)
}

type mockRepo struct {
	listByIDsFn func(ctx context.Context, ids []int64) ([]company.Company, error)
}

func (m *mockRepo) ListByIDs(ctx context.Context, ids []int64) ([]company.Company, error) {
	return m.listByIDsFn(ctx, ids)
}

type mockCompleter struct {
	answer     string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (m *mockCompleter) Complete(_ context.Context, system, user string) (string, error) {
	m.calls++
	m.lastSystem = system
	m.lastUser = user
	return m.answer, m.err
}

func mkCompany(id int64, name, slug, batch, oneLiner string) company.Company {
	return company.Company{ID: id, Name: name, Slug: slug, Batch: batch, OneLiner: oneLiner}
}

// storeRepo serves a fixed corpus in ascending id order, the way the SQL
// repository does.
func storeRepo(rows ...company.Company) *mockRepo {
	return &mockRepo{
		listByIDsFn: func(_ context.Context, ids []int64) ([]company.Company, error) {
			want := make(map[int64]bool, len(ids))
			for _, id := range ids {
				want[id] = true
			}
			out := make([]company.Company, 0, len(ids))
			for _, c := range rows {
				if want[c.ID] {
					out = append(out, c)
				}
			}
			return out, nil
		},
	}
}

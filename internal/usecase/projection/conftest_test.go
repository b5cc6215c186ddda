package projection

import (
	"context"

	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
)

// --- Mocks ---

type mockRepo struct {
	rows      []company.Embedded
	sig       string
	listCalls int
}

func (m *mockRepo) ListEmbedded(_ context.Context, _ filters.Set) ([]company.Embedded, error) {
	m.listCalls++
	return m.rows, nil
}

func (m *mockRepo) EmbeddingSignature(_ context.Context) (string, error) {
	return m.sig, nil
}

type mockSimilar struct {
	hits  []company.Hit
	err   error
	calls int
}

func (m *mockSimilar) Similar(_ context.Context, _ int64, _ int) ([]company.Hit, error) {
	m.calls++
	return m.hits, m.err
}

func embedded(id int64, name string, vector ...float64) company.Embedded {
	return company.Embedded{
		Company: company.Company{ID: id, Name: name},
		Vector:  vector,
	}
}

func hit(id int64) company.Hit {
	return company.Hit{Company: company.Company{ID: id}}
}

// axisRows spreads four companies along two orthogonal axes with the
// dominant variance on the first, so the layout is known in closed form.
func axisRows() []company.Embedded {
	return []company.Embedded{
		embedded(1, "east-up", 10, 1),
		embedded(2, "east-down", 10, -1),
		embedded(3, "west-up", -10, 1),
		embedded(4, "west-down", -10, -1),
	}
}

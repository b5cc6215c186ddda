// Package facets exposes distinct-value counts for the filter sidebar.
package facets

import (
	"context"
	"fmt"
	"sort"

	"github.com/seedscope/ycatlas/internal/domain/company"
)

// Service serves facet counts.
type Service struct {
	repo Repository
}

// New creates a facets service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns per-dimension value counts, each sorted by descending count.
// Years are re-sorted into reverse-chronological order afterwards so the
// sidebar always lists recent years first regardless of their counts.
func (s *Service) Get(ctx context.Context) (company.Facets, error) {
	f, err := s.repo.Facets(ctx)
	if err != nil {
		return company.Facets{}, fmt.Errorf("facets: %w", err)
	}

	sort.Slice(f.Years, func(i, j int) bool {
		return f.Years[i].Value > f.Years[j].Value
	})
	return f, nil
}

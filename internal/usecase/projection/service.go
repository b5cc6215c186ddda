// Package projection lays companies out in 2D via power-iteration PCA over
// their embedding vectors.
package projection

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
)

// Method names the projection algorithm in map payloads.
const Method = "PCA"

// Map is the selected-plus-similar overlay for one company.
type Map struct {
	Method            string             `json:"method"`
	SelectedCompanyID int64              `json:"selectedCompanyId"`
	Points            []company.MapPoint `json:"points"`
}

// snapshot is one immutable projection of the whole corpus.
type snapshot struct {
	signature string
	points    []company.Point
	index     map[int64]int
}

// Service computes and caches the corpus projection. The cache holds one
// snapshot keyed by the embedding signature; concurrent recomputation is
// last-writer-wins, which is safe because both writers project the same
// corpus snapshot.
type Service struct {
	repo    Repository
	similar SimilarFinder
	cache   atomic.Pointer[snapshot]
}

// New creates a projection service.
func New(repo Repository, similar SimilarFinder) *Service {
	return &Service{repo: repo, similar: similar}
}

// Points returns the projected corpus, recomputing only when the embedding
// signature has moved since the cached projection.
func (s *Service) Points(ctx context.Context) ([]company.Point, error) {
	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.points, nil
}

// EmbeddingMap returns the selected company's point plus the points of its
// most similar companies, or nil when the company has no stored embedding.
// Similar companies without a projected point are left out.
func (s *Service) EmbeddingMap(ctx context.Context, companyID int64, similarLimit int) (*Map, error) {
	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	selected, ok := snap.index[companyID]
	if !ok {
		return nil, nil
	}

	hits, err := s.similar.Similar(ctx, companyID, similarLimit)
	if err != nil {
		return nil, fmt.Errorf("map similar companies: %w", err)
	}

	points := make([]company.MapPoint, 0, len(hits)+1)
	points = append(points, company.MapPoint{Point: snap.points[selected], Group: company.GroupSelected})
	for _, h := range hits {
		i, ok := snap.index[h.ID]
		if !ok {
			continue
		}
		points = append(points, company.MapPoint{Point: snap.points[i], Group: company.GroupSimilar})
	}

	return &Map{Method: Method, SelectedCompanyID: companyID, Points: points}, nil
}

// current returns the cached snapshot when its signature still matches the
// store, projecting the corpus again otherwise.
func (s *Service) current(ctx context.Context) (*snapshot, error) {
	sig, err := s.repo.EmbeddingSignature(ctx)
	if err != nil {
		return nil, fmt.Errorf("projection signature: %w", err)
	}

	if snap := s.cache.Load(); snap != nil && snap.signature == sig {
		return snap, nil
	}

	rows, err := s.repo.ListEmbedded(ctx, filters.Set{})
	if err != nil {
		return nil, fmt.Errorf("projection corpus: %w", err)
	}

	points := project(rows)
	index := make(map[int64]int, len(points))
	for i, p := range points {
		index[p.ID] = i
	}

	snap := &snapshot{signature: sig, points: points, index: index}
	s.cache.Store(snap)
	return snap, nil
}

// Package search implements keyword and semantic company search.
package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
	"github.com/seedscope/ycatlas/internal/domain/search/request"
	"github.com/seedscope/ycatlas/internal/vectormath"
)

// scoreDecimals is the rounding applied to scores surfaced to callers.
const scoreDecimals = 4

// Service handles company search in both modes.
type Service struct {
	repo  Repository
	embed Embedder
}

// New creates a search service.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed}
}

// Keyword runs substring search with filters, sorting and offset pagination.
// Total counts every match, independent of the requested page.
func (s *Service) Keyword(ctx context.Context, req request.Search) (company.SearchPage, error) {
	rows, err := s.repo.List(ctx, req.Query(), req.Filters(), req.Sort(), req.PageSize(), req.Offset())
	if err != nil {
		return company.SearchPage{}, fmt.Errorf("keyword search: %w", err)
	}

	total, err := s.repo.Count(ctx, req.Query(), req.Filters())
	if err != nil {
		return company.SearchPage{}, fmt.Errorf("keyword search count: %w", err)
	}

	hits := make([]company.Hit, 0, len(rows))
	for _, c := range rows {
		hits = append(hits, company.Hit{Company: c})
	}
	return company.SearchPage{Hits: hits, Total: total}, nil
}

// Semantic embeds the query, ranks every filtered company holding a stored
// vector by cosine similarity and paginates the ranked list in memory. An
// empty query returns an empty page rather than falling back to keyword
// behavior. Provider failures propagate to the caller.
func (s *Service) Semantic(ctx context.Context, req request.Search) (company.SearchPage, error) {
	if req.Query() == "" {
		return company.SearchPage{Hits: []company.Hit{}}, nil
	}

	ranked, err := s.rank(ctx, req.Query(), req.Filters())
	if err != nil {
		return company.SearchPage{}, err
	}

	start := req.Offset()
	if start > len(ranked) {
		start = len(ranked)
	}
	end := start + req.PageSize()
	if end > len(ranked) {
		end = len(ranked)
	}

	hits := make([]company.Hit, 0, end-start)
	for _, r := range ranked[start:end] {
		score := vectormath.Round(r.score, scoreDecimals)
		hits = append(hits, company.Hit{Company: r.company, Score: &score})
	}
	return company.SearchPage{Hits: hits, Total: len(ranked)}, nil
}

// TopIDs returns the ids of the k best semantic matches, using the exact
// ranking Semantic uses so both views stay consistent.
func (s *Service) TopIDs(ctx context.Context, query string, fs filters.Set, k int) ([]int64, error) {
	if query == "" || k <= 0 {
		return nil, nil
	}

	ranked, err := s.rank(ctx, query, fs)
	if err != nil {
		return nil, err
	}
	if k > len(ranked) {
		k = len(ranked)
	}

	ids := make([]int64, 0, k)
	for _, r := range ranked[:k] {
		ids = append(ids, r.company.ID)
	}
	return ids, nil
}

// Similar ranks every other embedded company against the given company's
// stored vector. A company without a stored embedding yields an empty result,
// not an error: new companies lack vectors until the pipeline runs.
func (s *Service) Similar(ctx context.Context, companyID int64, limit int) ([]company.Hit, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.repo.ListEmbedded(ctx, filters.Set{})
	if err != nil {
		return nil, fmt.Errorf("similar companies: %w", err)
	}

	var self []float64
	for _, r := range rows {
		if r.Company.ID == companyID {
			self = r.Vector
			break
		}
	}
	if self == nil {
		return nil, nil
	}

	ranked := scoreAll(self, rows, companyID)
	if limit > len(ranked) {
		limit = len(ranked)
	}

	hits := make([]company.Hit, 0, limit)
	for _, r := range ranked[:limit] {
		score := vectormath.Round(r.score, scoreDecimals)
		hits = append(hits, company.Hit{Company: r.company, Score: &score})
	}
	return hits, nil
}

type scoredCompany struct {
	company company.Company
	score   float64
}

// rank embeds the query and scores all filtered embedded rows.
func (s *Service) rank(ctx context.Context, query string, fs filters.Set) ([]scoredCompany, error) {
	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := s.repo.ListEmbedded(ctx, fs)
	if err != nil {
		return nil, fmt.Errorf("list embedded companies: %w", err)
	}
	return scoreAll(emb.Vector, rows, 0), nil
}

// scoreAll scores rows against the reference vector, excluding excludeID,
// sorted by descending score with ascending id as the tie break.
func scoreAll(ref []float64, rows []company.Embedded, excludeID int64) []scoredCompany {
	out := make([]scoredCompany, 0, len(rows))
	for _, r := range rows {
		if excludeID != 0 && r.Company.ID == excludeID {
			continue
		}
		out = append(out, scoredCompany{company: r.Company, score: vectormath.Cosine(ref, r.Vector)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].company.ID < out[j].company.ID
	})
	return out
}

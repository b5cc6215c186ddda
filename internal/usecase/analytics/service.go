// Package analytics groups companies into YC batch cohorts with optional
// stacked category breakdowns.
package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
	"github.com/seedscope/ycatlas/internal/domain/search/request"
)

// DefaultTopN is the category count used when the caller does not ask for one.
const DefaultTopN = 8

// Params scopes one analytics computation. A non-nil IDs takes precedence
// over Query and Filters; an empty non-nil IDs deliberately yields zero rows,
// which is how analytics scoped to an empty semantic result set behaves.
type Params struct {
	Query   string
	Filters filters.Set
	IDs     []int64
	ColorBy ColorBy
	TopN    int
}

// Service computes batch analytics.
type Service struct {
	repo Repository
}

// New creates an analytics service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Batches resolves the candidate companies, groups them by batch cohort and
// returns chronologically ordered rows. With a color-by dimension each row is
// broken down into the globally most frequent top-N categories plus an Other
// remainder; series lists the emitted fields in order.
func (s *Service) Batches(ctx context.Context, p Params) (Result, error) {
	if p.ColorBy == "" {
		p.ColorBy = ColorByNone
	}
	if p.TopN <= 0 {
		p.TopN = DefaultTopN
	}

	candidates, err := s.candidates(ctx, p)
	if err != nil {
		return Result{}, fmt.Errorf("analytics candidates: %w", err)
	}

	groups := make(map[string][]company.Company)
	for _, c := range candidates {
		label := bucketLabel(c.Batch)
		groups[label] = append(groups[label], c)
	}

	labels := make([]string, 0, len(groups))
	for l := range groups {
		labels = append(labels, l)
	}
	sortBuckets(labels)

	res := Result{
		ColorBy:        p.ColorBy,
		TotalCompanies: len(candidates),
		Rows:           make([]Row, 0, len(labels)),
	}

	if p.ColorBy == ColorByNone {
		res.Series = []string{"total"}
		for _, l := range labels {
			res.Rows = append(res.Rows, Row{Batch: l, Total: len(groups[l])})
		}
		return res, nil
	}

	top := topCategories(candidates, p.ColorBy, p.TopN)
	res.Series = append(append(make([]string, 0, len(top)+1), top...), "Other")

	for _, l := range labels {
		members := groups[l]
		row := Row{Batch: l, Total: len(members)}

		counts := make(map[string]int)
		for _, c := range members {
			counts[category(&c, p.ColorBy)]++
		}

		selected := 0
		for _, name := range top {
			n := counts[name]
			selected += n
			row.Categories = append(row.Categories, CategoryCount{Name: name, Count: n})
		}
		other := row.Total - selected
		if other < 0 {
			other = 0
		}
		row.Categories = append(row.Categories, CategoryCount{Name: "Other", Count: other})
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

// candidates resolves the company set: the explicit id subset when provided,
// otherwise a keyword-style pass over the corpus.
func (s *Service) candidates(ctx context.Context, p Params) ([]company.Company, error) {
	if p.IDs != nil {
		if len(p.IDs) == 0 {
			return nil, nil
		}
		return s.repo.ListByIDs(ctx, p.IDs)
	}
	return s.repo.List(ctx, p.Query, p.Filters, request.SortName, 0, 0)
}

// category assigns a company to its stacking category: the first tag or
// first industry depending on the dimension. Companies without one land in
// the Unspecified bucket. First-position assignment follows stored order,
// so category attribution is only as stable as ingestion keeps that order.
func category(c *company.Company, dim ColorBy) string {
	var v string
	switch dim {
	case ColorByTags:
		v = c.PrimaryTag()
	case ColorByIndustries:
		v = c.PrimaryIndustry()
	}
	if v == "" {
		return UnspecifiedBucket
	}
	return v
}

// topCategories tallies categories across the whole candidate set and keeps
// the n most frequent, breaking count ties by name.
func topCategories(candidates []company.Company, dim ColorBy, n int) []string {
	counts := make(map[string]int)
	for i := range candidates {
		counts[category(&candidates[i], dim)]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	if n > len(names) {
		n = len(names)
	}
	return names[:n]
}

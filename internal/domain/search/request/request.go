// Package request holds validated search parameters.
package request

import (
	"strings"

	"github.com/seedscope/ycatlas/internal/domain/search/filters"
)

// Pagination limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Sort is a keyword search ordering.
type Sort string

// Supported sort orders.
const (
	// SortRelevance orders top companies first, then larger teams, then name.
	SortRelevance Sort = "relevance"
	// SortName orders by company name ascending.
	SortName Sort = "name"
	// SortNewest orders newest launch first, companies without a launch date
	// last.
	SortNewest Sort = "newest"
	// SortTeamSize orders largest team first, companies without a team size
	// last.
	SortTeamSize Sort = "team_size"
)

// ParseSort maps a wire value to a Sort. Unknown or empty values fall back
// to relevance.
func ParseSort(s string) Sort {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case SortName:
		return SortName
	case SortNewest:
		return SortNewest
	case SortTeamSize:
		return SortTeamSize
	default:
		return SortRelevance
	}
}

// Search is a normalized search query.
type Search struct {
	query    string
	filters  filters.Set
	sort     Sort
	page     int
	pageSize int
}

// NewSearch normalizes search parameters: the query is trimmed, page is
// clamped to 1 and pageSize to [1, MaxPageSize] with DefaultPageSize when
// unset.
func NewSearch(query string, fs filters.Set, sort Sort, page, pageSize int) Search {
	if sort == "" {
		sort = SortRelevance
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Search{
		query:    strings.TrimSpace(query),
		filters:  fs.Normalize(),
		sort:     sort,
		page:     page,
		pageSize: pageSize,
	}
}

// Query returns the trimmed query text.
func (s *Search) Query() string { return s.query }

// Filters returns the normalized filter set.
func (s *Search) Filters() filters.Set { return s.filters }

// Sort returns the requested ordering.
func (s *Search) Sort() Sort { return s.sort }

// Page returns the 1-based page number.
func (s *Search) Page() int { return s.page }

// PageSize returns the page size.
func (s *Search) PageSize() int { return s.pageSize }

// Offset returns the row offset of the first result on the page.
func (s *Search) Offset() int { return (s.page - 1) * s.pageSize }

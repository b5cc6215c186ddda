package ycatlas

import "time"

// SearchMode selects the search algorithm.
type SearchMode string

// Search modes.
const (
	ModeKeyword  SearchMode = "keyword"
	ModeSemantic SearchMode = "semantic"
)

// Sort orders keyword search results. Semantic searches always order by
// similarity and ignore it.
type Sort string

// Supported sort orders.
const (
	SortRelevance Sort = "relevance"
	SortName      Sort = "name"
	SortNewest    Sort = "newest"
	SortTeamSize  Sort = "team_size"
)

// Filters narrows a search, analytics or chat request. Dimensions combine
// with AND, values inside a dimension with OR. Boolean flags constrain only
// when true.
type Filters struct {
	Tags       []string `json:"tags,omitempty"`
	Industries []string `json:"industries,omitempty"`
	Regions    []string `json:"regions,omitempty"`
	Stages     []string `json:"stages,omitempty"`
	Batches    []string `json:"batches,omitempty"`
	Years      []int    `json:"years,omitempty"`
	IsHiring   bool     `json:"is_hiring,omitempty"`
	Nonprofit  bool     `json:"nonprofit,omitempty"`
	TopCompany bool     `json:"top_company,omitempty"`
}

// Company is one YC directory entry.
type Company struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	Website         string     `json:"website,omitempty"`
	OneLiner        string     `json:"one_liner,omitempty"`
	LongDescription string     `json:"long_description,omitempty"`
	Batch           string     `json:"batch,omitempty"`
	Status          string     `json:"status,omitempty"`
	Stage           string     `json:"stage,omitempty"`
	Industry        string     `json:"industry,omitempty"`
	Industries      []string   `json:"industries,omitempty"`
	Regions         []string   `json:"regions,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	LaunchedAt      *time.Time `json:"launched_at,omitempty"`
	TeamSize        *int64     `json:"team_size,omitempty"`
	IsHiring        bool       `json:"is_hiring"`
	Nonprofit       bool       `json:"nonprofit"`
	TopCompany      bool       `json:"top_company"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Hit is a single search result. Score is set for semantic matches and nil
// for keyword matches.
type Hit struct {
	Company
	Score *float64 `json:"score,omitempty"`
}

// SearchPage is one page of results. Total counts every match, not just the
// returned page.
type SearchPage struct {
	Items    []Hit      `json:"items"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
	Mode     SearchMode `json:"mode"`
}

// FacetCount is one facet value with the number of companies carrying it.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// YearCount is one launch year with the number of companies launched in it.
type YearCount struct {
	Value int `json:"value"`
	Count int `json:"count"`
}

// Facets holds the distinct values per filterable dimension.
type Facets struct {
	Tags       []FacetCount `json:"tags"`
	Industries []FacetCount `json:"industries"`
	Regions    []FacetCount `json:"regions"`
	Stages     []FacetCount `json:"stages"`
	Batches    []FacetCount `json:"batches"`
	Years      []YearCount  `json:"years"`
}

// CompanyDetail is the single-company view. Markdown holds the scraped
// website content when the scrape pipeline has produced it.
type CompanyDetail struct {
	Company
	Markdown     string `json:"markdown,omitempty"`
	HasEmbedding bool   `json:"hasEmbedding"`
}

// MapPoint is one projected company on an embedding map. Group is "selected"
// for the requested company and "similar" for its neighbors.
type MapPoint struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Group string  `json:"group"`
}

// Map is a 2D projection of a company and its nearest neighbors in
// embedding space.
type Map struct {
	Method            string     `json:"method"`
	SelectedCompanyID int64      `json:"selectedCompanyId"`
	Points            []MapPoint `json:"points"`
}

// Citation points an answer back at one company used as context.
type Citation struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Batch string `json:"batch,omitempty"`
}

// Answer is a retrieval-grounded chat response with one citation per context
// company, ordered by relevance.
type Answer struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

// Health is the aggregated service health. Status is "ok" or "degraded";
// Checks maps component names to "ok" or "error".
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

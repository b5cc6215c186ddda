package company

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

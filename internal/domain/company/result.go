package company

// Hit is a single search result: the company plus an optional relevance score.
// Score is nil for keyword matches and set for semantic matches.
type Hit struct {
	Company
	Score *float64 `json:"score,omitempty"`
}

// SearchPage is one page of search results. Total counts every match across
// all pages, independent of pagination.
type SearchPage struct {
	Hits  []Hit `json:"items"`
	Total int   `json:"total"`
}

// Embedded pairs a company with its stored embedding vector.
type Embedded struct {
	Company Company
	Vector  []float64
}

// Detail is the single-company view joining the optional stored embedding
// and the optional scraped-website markdown. Vector is nil and Markdown empty
// when the pipelines have not produced them yet.
type Detail struct {
	Company
	Vector   []float64 `json:"-"`
	Markdown string    `json:"markdown,omitempty"`
}

// HasEmbedding reports whether a stored vector exists for the company.
func (d *Detail) HasEmbedding() bool {
	return len(d.Vector) > 0
}

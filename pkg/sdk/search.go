package ycatlas

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SearchParams selects, filters and pages a directory search. Zero values
// fall back to server defaults: keyword mode, relevance sort, page 1.
type SearchParams struct {
	Query    string
	Mode     SearchMode
	Filters  Filters
	Sort     Sort
	Page     int
	PageSize int
}

func (p SearchParams) values() url.Values {
	q := url.Values{}
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	if p.Mode != "" {
		q.Set("mode", string(p.Mode))
	}
	if p.Sort != "" {
		q.Set("sort", string(p.Sort))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	p.Filters.encode(q)
	return q
}

// encode writes the filter dimensions as query parameters. List values are
// comma-joined; the server accepts both that and repeated parameters.
func (f Filters) encode(q url.Values) {
	setList := func(name string, values []string) {
		if len(values) > 0 {
			q.Set(name, strings.Join(values, ","))
		}
	}
	setList("tags", f.Tags)
	setList("industries", f.Industries)
	setList("regions", f.Regions)
	setList("stages", f.Stages)
	setList("batches", f.Batches)

	if len(f.Years) > 0 {
		years := make([]string, len(f.Years))
		for i, y := range f.Years {
			years[i] = strconv.Itoa(y)
		}
		q.Set("years", strings.Join(years, ","))
	}
	if f.IsHiring {
		q.Set("is_hiring", "true")
	}
	if f.Nonprofit {
		q.Set("nonprofit", "true")
	}
	if f.TopCompany {
		q.Set("top_company", "true")
	}
}

// Search runs a keyword or semantic search over the directory.
func (c *Client) Search(ctx context.Context, p SearchParams) (page SearchPage, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	err = c.get(ctx, "/api/search", p.values(), &page)
	return page, err
}

// Facets returns the distinct filterable values with per-value counts.
func (c *Client) Facets(ctx context.Context) (f Facets, err error) {
	start := time.Now()
	defer func() { c.obs.observe("facets", start, err) }()

	err = c.get(ctx, "/api/facets", nil, &f)
	return f, err
}

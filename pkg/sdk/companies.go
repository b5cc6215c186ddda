package ycatlas

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// Company fetches a single company with its scraped page content.
// Fails with ErrCompanyNotFound for unknown ids.
func (c *Client) Company(ctx context.Context, id int64) (d CompanyDetail, err error) {
	start := time.Now()
	defer func() { c.obs.observe("company", start, err) }()

	err = c.get(ctx, companyPath(id), nil, &d)
	return d, err
}

// Similar returns the companies closest to the given one in embedding space.
// limit <= 0 uses the server default. A company without a stored embedding
// has no neighbors and yields an empty list.
func (c *Client) Similar(ctx context.Context, id int64, limit int) (hits []Hit, err error) {
	start := time.Now()
	defer func() { c.obs.observe("similar", start, err) }()

	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Items []Hit `json:"items"`
	}
	err = c.get(ctx, companyPath(id)+"/similar", q, &out)
	return out.Items, err
}

// Map returns the 2D embedding map centered on the given company. Fails with
// ErrNotFound when the company has no stored embedding.
func (c *Client) Map(ctx context.Context, id int64) (m Map, err error) {
	start := time.Now()
	defer func() { c.obs.observe("map", start, err) }()

	err = c.get(ctx, companyPath(id)+"/map", nil, &m)
	return m, err
}

func companyPath(id int64) string {
	return "/api/companies/" + strconv.FormatInt(id, 10)
}

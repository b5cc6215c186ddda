package companies

import (
	"context"
	"fmt"

	"github.com/seedscope/ycatlas/internal/domain/company"
)

// Facets computes distinct-value counts for every filterable dimension,
// each ordered by descending count. Multi-valued dimensions count a company
// once per distinct value it carries.
func (r *Repository) Facets(ctx context.Context) (company.Facets, error) {
	var (
		f   company.Facets
		err error
	)
	if f.Tags, err = r.jsonFacet(ctx, "tags"); err != nil {
		return f, err
	}
	if f.Industries, err = r.jsonFacet(ctx, "industries"); err != nil {
		return f, err
	}
	if f.Regions, err = r.jsonFacet(ctx, "regions"); err != nil {
		return f, err
	}
	if f.Stages, err = r.columnFacet(ctx, "stage"); err != nil {
		return f, err
	}
	if f.Batches, err = r.columnFacet(ctx, "batch"); err != nil {
		return f, err
	}
	if f.Years, err = r.yearFacet(ctx); err != nil {
		return f, err
	}
	return f, nil
}

// jsonFacet counts values inside a JSON array column. The inner select keeps
// malformed rows away from json_each.
func (r *Repository) jsonFacet(ctx context.Context, column string) ([]company.FacetCount, error) {
	q := `SELECT je.value, COUNT(DISTINCT c.id) AS n
		FROM (SELECT id, ` + column + ` FROM companies WHERE json_valid(` + column + `)) c,
			json_each(c.` + column + `) AS je
		WHERE je.value != ''
		GROUP BY je.value
		ORDER BY n DESC, je.value ASC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("facet %s: %w", column, err)
	}
	defer rows.Close()

	var out []company.FacetCount
	for rows.Next() {
		var fc company.FacetCount
		if err := rows.Scan(&fc.Value, &fc.Count); err != nil {
			return nil, fmt.Errorf("scan facet %s: %w", column, err)
		}
		out = append(out, fc)
	}
	return out, rows.Err()
}

func (r *Repository) columnFacet(ctx context.Context, column string) ([]company.FacetCount, error) {
	q := `SELECT c.` + column + `, COUNT(*) AS n
		FROM companies c
		WHERE c.` + column + ` != ''
		GROUP BY c.` + column + `
		ORDER BY n DESC, c.` + column + ` ASC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("facet %s: %w", column, err)
	}
	defer rows.Close()

	var out []company.FacetCount
	for rows.Next() {
		var fc company.FacetCount
		if err := rows.Scan(&fc.Value, &fc.Count); err != nil {
			return nil, fmt.Errorf("scan facet %s: %w", column, err)
		}
		out = append(out, fc)
	}
	return out, rows.Err()
}

// yearFacet counts companies per UTC launch year. Companies without a launch
// date are excluded.
func (r *Repository) yearFacet(ctx context.Context) ([]company.YearCount, error) {
	q := `SELECT CAST(strftime('%Y', c.launched_at, 'unixepoch') AS INTEGER) AS y, COUNT(*) AS n
		FROM companies c
		WHERE c.launched_at IS NOT NULL
		GROUP BY y
		ORDER BY n DESC, y DESC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("facet years: %w", err)
	}
	defer rows.Close()

	var out []company.YearCount
	for rows.Next() {
		var yc company.YearCount
		if err := rows.Scan(&yc.Value, &yc.Count); err != nil {
			return nil, fmt.Errorf("scan facet years: %w", err)
		}
		out = append(out, yc)
	}
	return out, rows.Err()
}

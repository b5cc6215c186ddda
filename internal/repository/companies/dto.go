package companies

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/seedscope/ycatlas/internal/domain/company"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// companyColumns lists the columns scanCompany expects, in order.
const companyColumns = `c.id, c.name, c.slug, c.website, c.one_liner, c.long_description,
	c.batch, c.status, c.stage, c.industry, c.industries, c.regions, c.tags,
	c.launched_at, c.team_size, c.is_hiring, c.nonprofit, c.top_company, c.search_text, c.updated_at`

// scanCompany scans companyColumns plus any trailing extra columns.
func scanCompany(rs rowScanner, extra ...any) (company.Company, error) {
	var (
		c          company.Company
		industries string
		regions    string
		tags       string
		launchedAt sql.NullInt64
		teamSize   sql.NullInt64
	)
	dest := []any{
		&c.ID, &c.Name, &c.Slug, &c.Website, &c.OneLiner, &c.LongDescription,
		&c.Batch, &c.Status, &c.Stage, &c.Industry, &industries, &regions, &tags,
		&launchedAt, &teamSize, &c.IsHiring, &c.Nonprofit, &c.TopCompany, &c.SearchText, &c.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := rs.Scan(dest...); err != nil {
		return company.Company{}, err
	}

	c.Industries = parseStringList(industries)
	c.Regions = parseStringList(regions)
	c.Tags = parseStringList(tags)
	c.LaunchedAt = unixPtr(launchedAt)
	if teamSize.Valid {
		c.TeamSize = &teamSize.Int64
	}
	return c, nil
}

// parseStringList decodes a JSON array column. Malformed JSON yields nil
// rather than an error, so one bad row cannot break a whole listing.
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseVector decodes a stored JSON vector. Malformed JSON yields nil; the
// caller skips such rows.
func parseVector(s string) []float64 {
	if s == "" {
		return nil
	}
	var out []float64
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

// marshallist encodes a string list for a JSON array column, nil as "[]".
func marshalList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// marshalVector encodes an embedding vector for storage.
func marshalVector(v []float64) string {
	if len(v) == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unixPtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func int64OrNil(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package companies

import (
	"strings"

	"github.com/seedscope/ycatlas/internal/db"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
	"github.com/seedscope/ycatlas/internal/domain/search/request"
)

// buildFilterCond translates the filter set into WHERE fragments. The SQL
// must select exactly the rows filters.Set.Matches accepts, so the two paths
// stay interchangeable.
func buildFilterCond(cond *db.Cond, fs filters.Set) {
	if len(fs.Tags) > 0 {
		jsonListCond(cond, "c.tags", fs.Tags)
	}
	if len(fs.Industries) > 0 {
		industriesCond(cond, fs.Industries)
	}
	if len(fs.Regions) > 0 {
		jsonListCond(cond, "c.regions", fs.Regions)
	}
	if len(fs.Stages) > 0 {
		cond.And("c.stage IN ("+db.Placeholders(len(fs.Stages))+")", toArgs(fs.Stages)...)
	}
	if len(fs.Batches) > 0 {
		cond.And("c.batch IN ("+db.Placeholders(len(fs.Batches))+")", toArgs(fs.Batches)...)
	}
	if len(fs.Years) > 0 {
		args := make([]any, len(fs.Years))
		for i, y := range fs.Years {
			args[i] = y
		}
		// strftime on a NULL launch date yields NULL, which never matches IN.
		cond.And("CAST(strftime('%Y', c.launched_at, 'unixepoch') AS INTEGER) IN ("+db.Placeholders(len(fs.Years))+")", args...)
	}
	if fs.IsHiring {
		cond.And("c.is_hiring = 1")
	}
	if fs.Nonprofit {
		cond.And("c.nonprofit = 1")
	}
	if fs.TopCompany {
		cond.And("c.top_company = 1")
	}
}

// textCond appends the case-insensitive substring condition over the
// searchable text columns. No-op for an empty query.
func textCond(cond *db.Cond, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	pattern := likePattern(query)
	cond.And(
		`(c.name LIKE ? ESCAPE '\' OR c.one_liner LIKE ? ESCAPE '\' OR c.long_description LIKE ? ESCAPE '\' OR c.search_text LIKE ? ESCAPE '\')`,
		pattern, pattern, pattern, pattern,
	)
}

// likePattern wraps the query in % wildcards, escaping LIKE metacharacters.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// jsonListCond matches rows whose JSON array column contains any wanted
// value. Rows with malformed JSON never match.
func jsonListCond(cond *db.Cond, column string, values []string) {
	ph := db.Placeholders(len(values))
	cond.And(
		"(json_valid("+column+") AND EXISTS (SELECT 1 FROM json_each("+column+") AS je WHERE je.value IN ("+ph+")))",
		toArgs(values)...,
	)
}

// industriesCond matches on the primary industry column or any entry of the
// industries list.
func industriesCond(cond *db.Cond, values []string) {
	ph := db.Placeholders(len(values))
	args := make([]any, 0, 2*len(values))
	args = append(args, toArgs(values)...)
	args = append(args, toArgs(values)...)
	cond.And(
		"(c.industry IN ("+ph+") OR (json_valid(c.industries) AND EXISTS (SELECT 1 FROM json_each(c.industries) AS je WHERE je.value IN ("+ph+"))))",
		args...,
	)
}

// orderClause returns the ORDER BY for the sort mode. Every ordering ends on
// id so pagination is stable across requests.
func orderClause(sort request.Sort, hasQuery bool) string {
	switch sort {
	case request.SortName:
		return " ORDER BY c.name ASC, c.id ASC"
	case request.SortNewest:
		return " ORDER BY c.launched_at DESC NULLS LAST, c.top_company DESC, c.name ASC, c.id ASC"
	case request.SortTeamSize:
		return " ORDER BY c.team_size DESC NULLS LAST, c.top_company DESC, c.name ASC, c.id ASC"
	default:
		if hasQuery {
			return " ORDER BY c.top_company DESC, c.team_size DESC NULLS LAST, c.name ASC, c.id ASC"
		}
		return " ORDER BY c.top_company DESC, c.name ASC, c.id ASC"
	}
}

func toArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

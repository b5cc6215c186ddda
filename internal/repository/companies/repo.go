// Package companies implements SQLite persistence for the company corpus,
// stored embeddings and scraped pages.
package companies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/seedscope/ycatlas/internal/db"
	"github.com/seedscope/ycatlas/internal/domain"
	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
	"github.com/seedscope/ycatlas/internal/domain/search/request"
)

// Repository reads and writes the company corpus.
type Repository struct {
	db *sql.DB
}

// New creates a company repository over an open database.
func New(sqlDB *sql.DB) *Repository {
	return &Repository{db: sqlDB}
}

// List returns companies matching the text query and filter set in the given
// sort order. limit <= 0 returns all matches (used by analytics).
func (r *Repository) List(ctx context.Context, query string, fs filters.Set, sort request.Sort, limit, offset int) ([]company.Company, error) {
	cond := db.NewCond()
	textCond(cond, query)
	buildFilterCond(cond, fs)
	where, args := cond.SQL()

	q := `SELECT ` + companyColumns + ` FROM companies c` + where + orderClause(sort, query != "")
	if limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	return collectCompanies(rows)
}

// Count returns the number of companies matching the text query and filter
// set, independent of pagination.
func (r *Repository) Count(ctx context.Context, query string, fs filters.Set) (int, error) {
	cond := db.NewCond()
	textCond(cond, query)
	buildFilterCond(cond, fs)
	where, args := cond.SQL()

	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies c`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count companies: %w", err)
	}
	return n, nil
}

// ByID returns a single company.
func (r *Repository) ByID(ctx context.Context, id int64) (*company.Company, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies c WHERE c.id = ?`, id)
	c, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("company %d: %w", id, domain.ErrCompanyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get company %d: %w", id, err)
	}
	return &c, nil
}

// ListByIDs returns the companies with the given ids, in id order. Unknown
// ids are silently absent from the result. An empty id list returns an empty
// result.
func (r *Repository) ListByIDs(ctx context.Context, ids []int64) ([]company.Company, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	q := `SELECT ` + companyColumns + ` FROM companies c WHERE c.id IN (` + db.Placeholders(len(ids)) + `) ORDER BY c.id ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list companies by ids: %w", err)
	}
	defer rows.Close()

	return collectCompanies(rows)
}

// Detail returns a company joined with its optional embedding vector and
// scraped markdown.
func (r *Repository) Detail(ctx context.Context, id int64) (*company.Detail, error) {
	q := `SELECT ` + companyColumns + `, e.vector, p.markdown
		FROM companies c
		LEFT JOIN embeddings e ON e.company_id = c.id
		LEFT JOIN pages p ON p.company_id = c.id
		WHERE c.id = ?`

	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("get company detail %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get company detail %d: %w", id, err)
		}
		return nil, fmt.Errorf("company %d: %w", id, domain.ErrCompanyNotFound)
	}

	var (
		vector   sql.NullString
		markdown sql.NullString
	)
	c, err := scanCompany(rows, &vector, &markdown)
	if err != nil {
		return nil, fmt.Errorf("scan company detail %d: %w", id, err)
	}

	d := &company.Detail{Company: c}
	if vector.Valid {
		d.Vector = parseVector(vector.String)
	}
	if markdown.Valid {
		d.Markdown = markdown.String
	}
	return d, rows.Err()
}

// ListEmbedded returns every filtered company that has a stored embedding,
// ordered by id ascending. Rows whose vector fails to decode are skipped.
func (r *Repository) ListEmbedded(ctx context.Context, fs filters.Set) ([]company.Embedded, error) {
	cond := db.NewCond()
	buildFilterCond(cond, fs)
	where, args := cond.SQL()

	q := `SELECT ` + companyColumns + `, e.vector
		FROM companies c
		JOIN embeddings e ON e.company_id = c.id` + where + ` ORDER BY c.id ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list embedded companies: %w", err)
	}
	defer rows.Close()

	var out []company.Embedded
	for rows.Next() {
		var vector sql.NullString
		c, err := scanCompany(rows, &vector)
		if err != nil {
			return nil, fmt.Errorf("scan embedded company: %w", err)
		}
		v := parseVector(vector.String)
		if v == nil {
			continue
		}
		out = append(out, company.Embedded{Company: c, Vector: v})
	}
	return out, rows.Err()
}

// EmbeddingSignature summarizes the embeddings table as "count:latest unix
// update time". Any insert or update changes it, which is all the projection
// cache needs to know.
func (r *Repository) EmbeddingSignature(ctx context.Context) (string, error) {
	var count, latest int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(updated_at), 0) FROM embeddings`,
	).Scan(&count, &latest)
	if err != nil {
		return "", fmt.Errorf("embedding signature: %w", err)
	}
	return fmt.Sprintf("%d:%d", count, latest), nil
}

func collectCompanies(rows *sql.Rows) ([]company.Company, error) {
	var out []company.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

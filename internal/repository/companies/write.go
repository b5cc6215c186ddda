package companies

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/seedscope/ycatlas/internal/domain/company"
)

// UpsertCompanies writes directory records in one transaction, inserting new
// companies and overwriting existing ones by id.
func (r *Repository) UpsertCompanies(ctx context.Context, records []company.Company) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO companies (
			id, name, slug, website, one_liner, long_description,
			batch, status, stage, industry, industries, regions, tags,
			launched_at, team_size, is_hiring, nonprofit, top_company,
			search_text, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			slug = excluded.slug,
			website = excluded.website,
			one_liner = excluded.one_liner,
			long_description = excluded.long_description,
			batch = excluded.batch,
			status = excluded.status,
			stage = excluded.stage,
			industry = excluded.industry,
			industries = excluded.industries,
			regions = excluded.regions,
			tags = excluded.tags,
			launched_at = excluded.launched_at,
			team_size = excluded.team_size,
			is_hiring = excluded.is_hiring,
			nonprofit = excluded.nonprofit,
			top_company = excluded.top_company,
			search_text = excluded.search_text,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range records {
		c := &records[i]
		if c.SearchText == "" {
			c.SearchText = c.BuildSearchText()
		}
		_, err := stmt.ExecContext(ctx,
			c.ID, c.Name, c.Slug, c.Website, c.OneLiner, c.LongDescription,
			c.Batch, c.Status, c.Stage, c.Industry,
			marshalList(c.Industries), marshalList(c.Regions), marshalList(c.Tags),
			unixOrNil(c.LaunchedAt), int64OrNil(c.TeamSize),
			boolInt(c.IsHiring), boolInt(c.Nonprofit), boolInt(c.TopCompany),
			c.SearchText, now,
		)
		if err != nil {
			return fmt.Errorf("upsert company %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// UpsertEmbedding stores or replaces a company's embedding vector.
func (r *Repository) UpsertEmbedding(ctx context.Context, companyID int64, vector []float64, sourceHash string, updatedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO embeddings (company_id, vector, source_hash, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(company_id) DO UPDATE SET
			vector = excluded.vector,
			source_hash = excluded.source_hash,
			updated_at = excluded.updated_at`,
		companyID, marshalVector(vector), sourceHash, updatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert embedding %d: %w", companyID, err)
	}
	return nil
}

// UpsertPage stores or replaces a company's scraped page markdown.
func (r *Repository) UpsertPage(ctx context.Context, companyID int64, url, markdown string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pages (company_id, url, markdown, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(company_id) DO UPDATE SET
			url = excluded.url,
			markdown = excluded.markdown,
			fetched_at = excluded.fetched_at`,
		companyID, url, markdown, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert page %d: %w", companyID, err)
	}
	return nil
}

// EmbedCandidate is a company due for (re-)embedding: its current text
// sources plus the hash stored with the previous embedding, if any.
type EmbedCandidate struct {
	Company    company.Company
	Markdown   string
	StoredHash string
}

// ListEmbedCandidates returns every company joined with its scraped markdown
// and the source hash of its stored embedding. The embed pipeline compares
// hashes to skip unchanged companies.
func (r *Repository) ListEmbedCandidates(ctx context.Context) ([]EmbedCandidate, error) {
	q := `SELECT ` + companyColumns + `, p.markdown, e.source_hash
		FROM companies c
		LEFT JOIN pages p ON p.company_id = c.id
		LEFT JOIN embeddings e ON e.company_id = c.id
		ORDER BY c.id ASC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list embed candidates: %w", err)
	}
	defer rows.Close()

	var out []EmbedCandidate
	for rows.Next() {
		var (
			markdown   sql.NullString
			sourceHash sql.NullString
		)
		c, err := scanCompany(rows, &markdown, &sourceHash)
		if err != nil {
			return nil, fmt.Errorf("scan embed candidate: %w", err)
		}
		out = append(out, EmbedCandidate{
			Company:    c,
			Markdown:   markdown.String,
			StoredHash: sourceHash.String,
		})
	}
	return out, rows.Err()
}

// ListScrapeCandidates returns companies with a website whose stored page is
// absent or was fetched before staleBefore. Passing a future time treats
// every stored page as stale.
func (r *Repository) ListScrapeCandidates(ctx context.Context, staleBefore time.Time) ([]company.Company, error) {
	q := `SELECT ` + companyColumns + ` FROM companies c
		WHERE c.website != ''
		AND NOT EXISTS (
			SELECT 1 FROM pages p WHERE p.company_id = c.id AND p.fetched_at >= ?
		)
		ORDER BY c.id ASC`

	rows, err := r.db.QueryContext(ctx, q, staleBefore.UTC())
	if err != nil {
		return nil, fmt.Errorf("list scrape candidates: %w", err)
	}
	defer rows.Close()

	return collectCompanies(rows)
}

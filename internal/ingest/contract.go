// Package ingest runs the pipelines that keep the local corpus fresh:
// directory sync, website scraping and embedding generation.
package ingest

import (
	"context"
	"time"

	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/repository/companies"
)

// DirectorySource fetches the full upstream company directory.
type DirectorySource interface {
	FetchAll(ctx context.Context) ([]company.Company, error)
}

// Scraper renders one website URL as markdown.
type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// SyncStore persists synced directory records. Satisfied by *companies.Repository.
type SyncStore interface {
	UpsertCompanies(ctx context.Context, records []company.Company) error
}

// ScrapeStore lists scrape work and persists fetched pages.
// Satisfied by *companies.Repository.
type ScrapeStore interface {
	ListScrapeCandidates(ctx context.Context, staleBefore time.Time) ([]company.Company, error)
	UpsertPage(ctx context.Context, companyID int64, url, markdown string) error
}

// EmbedStore lists embedding work and persists vectors.
// Satisfied by *companies.Repository.
type EmbedStore interface {
	ListEmbedCandidates(ctx context.Context) ([]companies.EmbedCandidate, error)
	UpsertEmbedding(ctx context.Context, companyID int64, vector []float64, sourceHash string, updatedAt time.Time) error
}

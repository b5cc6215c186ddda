package search

import (
	"context"

	"github.com/seedscope/ycatlas/internal/domain"
	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
	"github.com/seedscope/ycatlas/internal/domain/search/request"
)

// Repository defines the corpus read contract for search operations.
type Repository interface {
	List(ctx context.Context, query string, fs filters.Set, sort request.Sort, limit, offset int) ([]company.Company, error)
	Count(ctx context.Context, query string, fs filters.Set) (int, error)
	ListEmbedded(ctx context.Context, fs filters.Set) ([]company.Embedded, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

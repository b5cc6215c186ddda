package projection

import (
	"context"

	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
)

// Repository reads the embedded corpus and its change signature.
type Repository interface {
	ListEmbedded(ctx context.Context, fs filters.Set) ([]company.Embedded, error)
	EmbeddingSignature(ctx context.Context) (string, error)
}

// SimilarFinder ranks companies against a company's stored vector. The map
// overlay reuses the same ranking the similar-companies endpoint serves so
// both views agree.
type SimilarFinder interface {
	Similar(ctx context.Context, companyID int64, limit int) ([]company.Hit, error)
}

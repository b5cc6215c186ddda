package facets

import (
	"context"

	"github.com/seedscope/ycatlas/internal/domain/company"
)

// Repository computes raw facet counts over the corpus.
type Repository interface {
	Facets(ctx context.Context) (company.Facets, error)
}

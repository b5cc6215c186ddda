package chat

import (
	"context"

	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
)

// Searcher resolves the companies most relevant to a question. Implemented by
// the search service's semantic top-ids ranking.
type Searcher interface {
	TopIDs(ctx context.Context, query string, fs filters.Set, k int) ([]int64, error)
}

// Repository loads the company records used as grounding context.
type Repository interface {
	ListByIDs(ctx context.Context, ids []int64) ([]company.Company, error)
}

// Completer produces an answer from a system prompt and a user message.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

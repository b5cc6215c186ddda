// Package chat answers directory questions grounded in semantic retrieval.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
)

// DefaultTopK is the number of companies retrieved as context when the
// configured value is missing or invalid.
const DefaultTopK = 8

// noMatchAnswer is returned without calling the completion provider when
// retrieval finds nothing to ground an answer on.
const noMatchAnswer = "No companies in the directory matched this question. " +
	"Try rephrasing it or loosening the filters."

// Citation points an answer back at one company used as context.
type Citation struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Batch string `json:"batch,omitempty"`
}

// Answer is a grounded response with one citation per context company,
// ordered by retrieval relevance.
type Answer struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

// Service generates retrieval-grounded answers about the company directory.
type Service struct {
	search Searcher
	repo   Repository
	llm    Completer
	topK   int
}

// New creates a chat service retrieving topK companies per question.
func New(search Searcher, repo Repository, llm Completer, topK int) *Service {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Service{search: search, repo: repo, llm: llm, topK: topK}
}

// Ask retrieves the companies most relevant to the question, asks the
// completion provider for an answer grounded in them and cites every company
// that entered the prompt. An empty question yields an empty answer without
// touching retrieval or the provider. When retrieval comes back empty the
// provider is skipped and a fixed no-match answer is returned.
func (s *Service) Ask(ctx context.Context, question string, fs filters.Set) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{Citations: []Citation{}}, nil
	}

	ids, err := s.search.TopIDs(ctx, question, fs, s.topK)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve context: %w", err)
	}
	if len(ids) == 0 {
		return Answer{Answer: noMatchAnswer, Citations: []Citation{}}, nil
	}

	rows, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return Answer{}, fmt.Errorf("load context companies: %w", err)
	}
	grounding := orderByRelevance(ids, rows)
	if len(grounding) == 0 {
		return Answer{Answer: noMatchAnswer, Citations: []Citation{}}, nil
	}

	text, err := s.llm.Complete(ctx, systemPrompt, buildUserPrompt(grounding, question))
	if err != nil {
		return Answer{}, fmt.Errorf("chat completion: %w", err)
	}

	citations := make([]Citation, 0, len(grounding))
	for _, c := range grounding {
		citations = append(citations, Citation{ID: c.ID, Name: c.Name, Slug: c.Slug, Batch: c.Batch})
	}
	return Answer{Answer: text, Citations: citations}, nil
}

// orderByRelevance reorders id-ordered rows into retrieval order, dropping
// ids that vanished from the store between ranking and load.
func orderByRelevance(ids []int64, rows []company.Company) []company.Company {
	byID := make(map[int64]company.Company, len(rows))
	for _, c := range rows {
		byID[c.ID] = c
	}

	out := make([]company.Company, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

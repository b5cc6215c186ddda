package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrCompanyNotFound signals a missing company record.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrChatProviderError signals a chat completion provider failure.
	ErrChatProviderError = errors.New("chat provider error")
	// ErrScrapeProviderError signals a page scrape provider failure.
	ErrScrapeProviderError = errors.New("scrape provider error")
	// ErrSyncSourceError signals a directory source fetch failure.
	ErrSyncSourceError = errors.New("directory source error")
	// ErrTokenBudgetExceeded signals an exhausted per-run embedding token budget.
	ErrTokenBudgetExceeded = errors.New("token budget exceeded")
)

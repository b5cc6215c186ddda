package ycatlas

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/seedscope/ycatlas/internal/domain"
)

// Sentinel errors re-exported from the domain layer. Error responses from the
// server unwrap to these, so errors.Is works across the HTTP boundary.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrCompanyNotFound        = domain.ErrCompanyNotFound
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrChatProviderError      = domain.ErrChatProviderError
	ErrTokenBudgetExceeded    = domain.ErrTokenBudgetExceeded
)

// Client-side sentinels for conditions the domain layer does not model.
var (
	// ErrUnauthorized signals a missing or invalid API key.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidRequest signals a request the server rejected as malformed.
	ErrInvalidRequest = errors.New("invalid request")
)

// APIError is a structured error response from the server.
type APIError struct {
	Status  int    // HTTP status code
	Code    string // machine-readable code, e.g. "company_not_found"
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("ycatlas: http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("ycatlas: %s (%s)", e.Message, e.Code)
}

// Unwrap maps the wire error code onto a sentinel so callers can branch with
// errors.Is instead of inspecting codes.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "company_not_found":
		return ErrCompanyNotFound
	case "not_found":
		return ErrNotFound
	case "budget_exhausted":
		return ErrTokenBudgetExceeded
	case "embedding_provider_error":
		return ErrEmbeddingProviderError
	case "chat_provider_error":
		return ErrChatProviderError
	case "unauthorized":
		return ErrUnauthorized
	case "validation_failed", "bad_request":
		return ErrInvalidRequest
	}
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

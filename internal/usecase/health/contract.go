package health

import "context"

// StorePinger checks the relational store. Satisfied by *sql.DB.
type StorePinger interface {
	PingContext(ctx context.Context) error
}

// CachePinger checks the optional embedding-cache store.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// Package health aggregates component liveness checks for the API.
package health

import "context"

// Status is the aggregated health of the service.
type Status string

const (
	// Healthy indicates all checked components are operational.
	Healthy Status = "ok"
	// Degraded indicates at least one component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult is one component's outcome.
type CheckResult string

const (
	// CheckOK indicates a passing check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing check.
	CheckError CheckResult = "error"
)

// Report aggregates per-component results under one status.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service runs the configured component checks.
type Service struct {
	store     StorePinger
	cache     CachePinger
	embedding EmbeddingChecker
}

// New creates a Service. cache and embedding may be nil; their checks are
// then omitted from the report rather than failed.
func New(store StorePinger, cache CachePinger, embedding EmbeddingChecker) *Service {
	return &Service{store: store, cache: cache, embedding: embedding}
}

// Check pings every wired component. Any failing check degrades the overall
// status; the service never reports Unhealthy from here since the process is
// demonstrably serving the request.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.store.PingContext(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	return Report{Status: status, Checks: checks}
}

// Package chi exposes the core operations over HTTP. Handlers validate and
// normalize input at the boundary, then delegate to the usecase services;
// domain sentinels map onto status codes through the error handler chain.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/seedscope/ycatlas/internal/domain"
	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
	"github.com/seedscope/ycatlas/internal/domain/search/request"
	analyticsuc "github.com/seedscope/ycatlas/internal/usecase/analytics"
	healthuc "github.com/seedscope/ycatlas/internal/usecase/health"
	usageuc "github.com/seedscope/ycatlas/internal/usecase/usage"
)

// maxSimilarLimit caps the neighbor count a client can request.
const maxSimilarLimit = 50

// Error codes returned in {code, message} payloads.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeCompanyNotFound  = "company_not_found"
	codeBudgetExhausted  = "budget_exhausted"
	codeEmbeddingError   = "embedding_provider_error"
	codeChatError        = "chat_provider_error"
	codeUnauthorized     = "unauthorized"
	codeInternalError    = "internal_error"
)

// Limits carries the transport-level bounds applied before invoking core
// operations. Values come from configuration. MaxPageSize can lower the page
// size cap below the built-in maximum, never raise it.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
	SimilarLimit    int
	DefaultTopN     int
	MaxTopN         int
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the public API.
type Server struct {
	search        Searcher
	facets        FacetReader
	analytics     AnalyticsEngine
	maps          MapBuilder
	companies     CompanyReader
	chat          Asker
	usage         UsageReporter
	health        HealthChecker
	limits        Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	facets FacetReader,
	analytics AnalyticsEngine,
	maps MapBuilder,
	companies CompanyReader,
	chat Asker,
	usage UsageReporter,
	health HealthChecker,
	limits Limits,
	logger *zap.Logger,
) *Server {
	if limits.DefaultPageSize <= 0 {
		limits.DefaultPageSize = request.DefaultPageSize
	}
	if limits.MaxPageSize <= 0 || limits.MaxPageSize > request.MaxPageSize {
		limits.MaxPageSize = request.MaxPageSize
	}
	if limits.SimilarLimit <= 0 {
		limits.SimilarLimit = 8
	}
	if limits.MaxTopN <= 0 {
		limits.MaxTopN = 20
	}

	s := &Server{
		search:    search,
		facets:    facets,
		analytics: analytics,
		maps:      maps,
		companies: companies,
		chat:      chat,
		usage:     usage,
		health:    health,
		limits:    limits,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrCompanyNotFound, http.StatusNotFound, codeCompanyNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrTokenBudgetExceeded, http.StatusPaymentRequired, codeBudgetExhausted),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingError),
		sentinelHandler(domain.ErrChatProviderError, http.StatusBadGateway, codeChatError),
	}
	return s
}

// Routes builds the route tree. Middleware is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/facets", s.handleFacets)
		r.Post("/analytics", s.handleAnalytics)
		r.Route("/companies/{id}", func(r chi.Router) {
			r.Get("/", s.handleCompany)
			r.Get("/similar", s.handleSimilar)
			r.Get("/map", s.handleMap)
		})
		r.Post("/chat", s.handleChat)
		r.Get("/usage", s.handleUsage)
	})
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	return r
}

type searchResponse struct {
	Items    []company.Hit `json:"items"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
	Mode     string        `json:"mode"`
}

// handleSearch handles GET /api/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	mode := strings.ToLower(strings.TrimSpace(q.Get("mode")))
	if mode == "" {
		mode = "keyword"
	}
	if mode != "keyword" && mode != "semantic" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, `mode must be "keyword" or "semantic"`)
		return
	}

	fs, err := filtersFromQuery(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	page, err := intParam(q, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	pageSize, err := intParam(q, "page_size", s.limits.DefaultPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	if pageSize > s.limits.MaxPageSize {
		pageSize = s.limits.MaxPageSize
	}

	req := request.NewSearch(q.Get("q"), fs, request.ParseSort(q.Get("sort")), page, pageSize)

	var result company.SearchPage
	if mode == "semantic" {
		result, err = s.search.Semantic(r.Context(), req)
	} else {
		result, err = s.search.Keyword(r.Context(), req)
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if result.Hits == nil {
		result.Hits = []company.Hit{}
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Items:    result.Hits,
		Total:    result.Total,
		Page:     req.Page(),
		PageSize: req.PageSize(),
		Mode:     mode,
	})
}

// handleFacets handles GET /api/facets.
func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	f, err := s.facets.Get(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

type analyticsRequest struct {
	Query   string      `json:"query"`
	Filters filters.Set `json:"filters"`
	IDs     []int64     `json:"ids"`
	ColorBy string      `json:"colorBy"`
	TopN    int         `json:"topN"`
}

// handleAnalytics handles POST /api/analytics.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	var req analyticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	topN := req.TopN
	if topN < 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "topN must not be negative")
		return
	}
	if topN == 0 {
		topN = s.limits.DefaultTopN
	}
	if topN > s.limits.MaxTopN {
		topN = s.limits.MaxTopN
	}

	result, err := s.analytics.Batches(r.Context(), analyticsuc.Params{
		Query:   req.Query,
		Filters: req.Filters,
		IDs:     req.IDs,
		ColorBy: analyticsuc.ParseColorBy(req.ColorBy),
		TopN:    topN,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type companyResponse struct {
	company.Detail
	HasEmbedding bool `json:"hasEmbedding"`
}

// handleCompany handles GET /api/companies/{id}.
func (s *Server) handleCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := companyID(w, r)
	if !ok {
		return
	}

	detail, err := s.companies.Detail(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, companyResponse{
		Detail:       *detail,
		HasEmbedding: detail.HasEmbedding(),
	})
}

type similarResponse struct {
	Items []company.Hit `json:"items"`
}

// handleSimilar handles GET /api/companies/{id}/similar. A company without a
// stored vector has no neighbors; that is an empty list, not an error.
func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	id, ok := companyID(w, r)
	if !ok {
		return
	}
	limit, err := intParam(r.URL.Query(), "limit", s.limits.SimilarLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	if limit <= 0 {
		limit = s.limits.SimilarLimit
	}
	if limit > maxSimilarLimit {
		limit = maxSimilarLimit
	}

	hits, err := s.search.Similar(r.Context(), id, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if hits == nil {
		hits = []company.Hit{}
	}
	writeJSON(w, http.StatusOK, similarResponse{Items: hits})
}

// handleMap handles GET /api/companies/{id}/map.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	id, ok := companyID(w, r)
	if !ok {
		return
	}

	m, err := s.maps.EmbeddingMap(r.Context(), id, s.limits.SimilarLimit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "no embedding map for this company")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type chatRequest struct {
	Question string      `json:"question"`
	Filters  filters.Set `json:"filters"`
}

// handleChat handles POST /api/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "question is required")
		return
	}

	answer, err := s.chat.Ask(r.Context(), req.Question, req.Filters)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// handleUsage handles GET /api/usage.
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	period := usageuc.ParsePeriod(r.URL.Query().Get("period"))
	writeJSON(w, http.StatusOK, s.usage.GetReport(r.Context(), period))
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// handleMetrics handles GET /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// companyID parses the {id} path parameter, writing the 400 itself.
func companyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "company id must be a positive integer")
		return 0, false
	}
	return id, true
}

// filtersFromQuery builds the filter set from query parameters. List
// dimensions accept repeated parameters and comma-separated values.
func filtersFromQuery(q url.Values) (filters.Set, error) {
	fs := filters.Set{
		Tags:       listParam(q, "tags"),
		Industries: listParam(q, "industries"),
		Regions:    listParam(q, "regions"),
		Stages:     listParam(q, "stages"),
		Batches:    listParam(q, "batches"),
	}

	for _, raw := range listParam(q, "years") {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return filters.Set{}, fmt.Errorf("years must be integers, got %q", raw)
		}
		fs.Years = append(fs.Years, year)
	}

	var err error
	if fs.IsHiring, err = boolParam(q, "is_hiring"); err != nil {
		return filters.Set{}, err
	}
	if fs.Nonprofit, err = boolParam(q, "nonprofit"); err != nil {
		return filters.Set{}, err
	}
	if fs.TopCompany, err = boolParam(q, "top_company"); err != nil {
		return filters.Set{}, err
	}
	return fs, nil
}

func listParam(q url.Values, name string) []string {
	var out []string
	for _, v := range q[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func intParam(q url.Values, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

func boolParam(q url.Values, name string) (bool, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", name)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrCompanyNotFound,
		domain.ErrNotFound,
		domain.ErrTokenBudgetExceeded,
		domain.ErrEmbeddingProviderError,
		domain.ErrChatProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
	"github.com/seedscope/ycatlas/internal/domain/search/request"
	"github.com/seedscope/ycatlas/internal/usecase/analytics"
	"github.com/seedscope/ycatlas/internal/usecase/chat"
	healthuc "github.com/seedscope/ycatlas/internal/usecase/health"
	"github.com/seedscope/ycatlas/internal/usecase/projection"
	usageuc "github.com/seedscope/ycatlas/internal/usecase/usage"
)

// --- Mocks ---

type mockSearch struct {
	page          company.SearchPage
	hits          []company.Hit
	err           error
	lastReq       request.Search
	lastID        int64
	lastLimit     int
	keywordCalls  int
	semanticCalls int
}

func (m *mockSearch) Keyword(_ context.Context, req request.Search) (company.SearchPage, error) {
	m.keywordCalls++
	m.lastReq = req
	return m.page, m.err
}

func (m *mockSearch) Semantic(_ context.Context, req request.Search) (company.SearchPage, error) {
	m.semanticCalls++
	m.lastReq = req
	return m.page, m.err
}

func (m *mockSearch) Similar(_ context.Context, companyID int64, limit int) ([]company.Hit, error) {
	m.lastID = companyID
	m.lastLimit = limit
	return m.hits, m.err
}

type mockFacets struct {
	facets company.Facets
	err    error
}

func (m *mockFacets) Get(context.Context) (company.Facets, error) { return m.facets, m.err }

type mockAnalytics struct {
	result     analytics.Result
	err        error
	lastParams analytics.Params
	calls      int
}

func (m *mockAnalytics) Batches(_ context.Context, p analytics.Params) (analytics.Result, error) {
	m.calls++
	m.lastParams = p
	return m.result, m.err
}

type mockMaps struct {
	m         *projection.Map
	err       error
	lastID    int64
	lastLimit int
}

func (m *mockMaps) EmbeddingMap(_ context.Context, companyID int64, similarLimit int) (*projection.Map, error) {
	m.lastID = companyID
	m.lastLimit = similarLimit
	return m.m, m.err
}

type mockCompanies struct {
	detail *company.Detail
	err    error
	lastID int64
}

func (m *mockCompanies) Detail(_ context.Context, id int64) (*company.Detail, error) {
	m.lastID = id
	return m.detail, m.err
}

type mockAsker struct {
	answer       chat.Answer
	err          error
	lastQuestion string
	lastFilters  filters.Set
	calls        int
}

func (m *mockAsker) Ask(_ context.Context, question string, fs filters.Set) (chat.Answer, error) {
	m.calls++
	m.lastQuestion = question
	m.lastFilters = fs
	return m.answer, m.err
}

type mockUsage struct {
	report     usageuc.Report
	lastPeriod usageuc.Period
}

func (m *mockUsage) GetReport(_ context.Context, period usageuc.Period) usageuc.Report {
	m.lastPeriod = period
	m.report.Period = period
	return m.report
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

// serverMocks bundles the handler dependencies; nil entries get benign
// defaults so tests construct only what they assert on.
type serverMocks struct {
	search    *mockSearch
	facets    *mockFacets
	analytics *mockAnalytics
	maps      *mockMaps
	companies *mockCompanies
	chat      *mockAsker
	usage     *mockUsage
	health    *mockHealth
}

func newTestServer(m serverMocks) *Server {
	if m.search == nil {
		m.search = &mockSearch{}
	}
	if m.facets == nil {
		m.facets = &mockFacets{}
	}
	if m.analytics == nil {
		m.analytics = &mockAnalytics{}
	}
	if m.maps == nil {
		m.maps = &mockMaps{}
	}
	if m.companies == nil {
		m.companies = &mockCompanies{}
	}
	if m.chat == nil {
		m.chat = &mockAsker{}
	}
	if m.usage == nil {
		m.usage = &mockUsage{}
	}
	if m.health == nil {
		m.health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}

	return NewServer(
		m.search, m.facets, m.analytics, m.maps, m.companies, m.chat, m.usage, m.health,
		Limits{DefaultPageSize: 20, SimilarLimit: 8, DefaultTopN: 6, MaxTopN: 20},
		zap.NewNop(),
	)
}

func doRequest(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.Routes().ServeHTTP(rr, req)
	return rr
}

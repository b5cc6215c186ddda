package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/seedscope/ycatlas/internal/domain"
	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/repository/companies"
)

// --- Mocks ---

type mockSource struct {
	fetchFn func(ctx context.Context) ([]company.Company, error)
}

func (m *mockSource) FetchAll(ctx context.Context) ([]company.Company, error) {
	return m.fetchFn(ctx)
}

type mockSyncStore struct {
	upsertFn func(ctx context.Context, records []company.Company) error
	got      []company.Company
}

func (m *mockSyncStore) UpsertCompanies(ctx context.Context, records []company.Company) error {
	m.got = records
	if m.upsertFn != nil {
		return m.upsertFn(ctx, records)
	}
	return nil
}

// mockScraper is safe for concurrent use; the scrape pool calls it from
// multiple goroutines.
type mockScraper struct {
	mu       sync.Mutex
	scrapeFn func(url string, attempt int) (string, error)
	attempts map[string]int
	inflight int
	maxSeen  int
}

func (m *mockScraper) Scrape(_ context.Context, url string) (string, error) {
	m.mu.Lock()
	if m.attempts == nil {
		m.attempts = make(map[string]int)
	}
	m.attempts[url]++
	attempt := m.attempts[url]
	m.inflight++
	if m.inflight > m.maxSeen {
		m.maxSeen = m.inflight
	}
	m.mu.Unlock()

	md, err := m.scrapeFn(url, attempt)

	m.mu.Lock()
	m.inflight--
	m.mu.Unlock()
	return md, err
}

func (m *mockScraper) calls(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts[url]
}

type storedPage struct {
	url      string
	markdown string
}

type mockScrapeStore struct {
	mu          sync.Mutex
	candidates  []company.Company
	listErr     error
	staleBefore time.Time
	pages       map[int64]storedPage
}

func (m *mockScrapeStore) ListScrapeCandidates(_ context.Context, staleBefore time.Time) ([]company.Company, error) {
	m.staleBefore = staleBefore
	return m.candidates, m.listErr
}

func (m *mockScrapeStore) UpsertPage(_ context.Context, companyID int64, url, markdown string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pages == nil {
		m.pages = make(map[int64]storedPage)
	}
	m.pages[companyID] = storedPage{url: url, markdown: markdown}
	return nil
}

type storedEmbedding struct {
	vector []float64
	hash   string
}

type mockEmbedStore struct {
	candidates []companies.EmbedCandidate
	listErr    error
	upsertErr  error
	embeddings map[int64]storedEmbedding
}

func (m *mockEmbedStore) ListEmbedCandidates(_ context.Context) ([]companies.EmbedCandidate, error) {
	return m.candidates, m.listErr
}

func (m *mockEmbedStore) UpsertEmbedding(_ context.Context, companyID int64, vector []float64, sourceHash string, _ time.Time) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.embeddings == nil {
		m.embeddings = make(map[int64]storedEmbedding)
	}
	m.embeddings[companyID] = storedEmbedding{vector: vector, hash: sourceHash}
	return nil
}

type mockBatchEmbedder struct {
	batchFn    func(texts []string, call int) (domain.BatchEmbeddingResult, error)
	calls      int
	batchSizes []int
	allTexts   []string
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.calls++
	m.batchSizes = append(m.batchSizes, len(texts))
	m.allTexts = append(m.allTexts, texts...)
	return m.batchFn(texts, m.calls)
}

// vectorsFor fabricates one distinct unit vector per input text.
func vectorsFor(texts []string) domain.BatchEmbeddingResult {
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = []float64{float64(i + 1), 0.5}
	}
	return domain.BatchEmbeddingResult{Vectors: vectors, TotalTokens: 10 * len(texts)}
}

func siteCompany(id int64, website string) company.Company {
	return company.Company{ID: id, Name: "co", Website: website}
}

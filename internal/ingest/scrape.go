package ingest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/seedscope/ycatlas/internal/domain/company"
)

const (
	// DefaultScrapeWorkers bounds concurrent scrape requests.
	DefaultScrapeWorkers = 4
	// DefaultScrapeRetries is the number of extra attempts after a failed scrape.
	DefaultScrapeRetries = 3
)

// ScrapeResult summarizes one scrape run.
type ScrapeResult struct {
	RunID      string
	Candidates int
	Scraped    int
	Failed     int
	Duration   time.Duration
}

// ScrapePipeline fetches markdown snapshots for companies whose stored page
// is absent or stale. Scrapes run on a bounded worker pool; individual
// failures are logged and counted, they do not abort the run.
type ScrapePipeline struct {
	scraper     Scraper
	store       ScrapeStore
	workers     int
	retries     uint64
	maxAge      time.Duration
	backoffBase time.Duration
	logger      *zap.Logger
}

// NewScrapePipeline creates a scrape pipeline. Non-positive workers and
// negative retries fall back to the defaults; retries 0 disables retrying.
func NewScrapePipeline(scraper Scraper, store ScrapeStore, workers, retries int, maxAge time.Duration, logger *zap.Logger) *ScrapePipeline {
	if workers <= 0 {
		workers = DefaultScrapeWorkers
	}
	if retries < 0 {
		retries = DefaultScrapeRetries
	}
	return &ScrapePipeline{
		scraper:     scraper,
		store:       store,
		workers:     workers,
		retries:     uint64(retries),
		maxAge:      maxAge,
		backoffBase: time.Second,
		logger:      logger,
	}
}

// Run scrapes every candidate page. With refresh set, stored pages are
// ignored and every company with a website is scraped again.
func (p *ScrapePipeline) Run(ctx context.Context, refresh bool) (ScrapeResult, error) {
	res := ScrapeResult{RunID: uuid.NewString()}
	log := p.logger.With(zap.String("run_id", res.RunID))
	start := time.Now()

	staleBefore := time.Now().UTC().Add(-p.maxAge)
	if refresh {
		// A future cutoff marks every stored page stale.
		staleBefore = time.Now().UTC().Add(time.Hour)
	}

	candidates, err := p.store.ListScrapeCandidates(ctx, staleBefore)
	if err != nil {
		return res, fmt.Errorf("list scrape candidates: %w", err)
	}
	res.Candidates = len(candidates)
	if len(candidates) == 0 {
		log.Info("No scrape candidates")
		res.Duration = time.Since(start)
		return res, nil
	}

	log.Info("Scrape started",
		zap.Int("candidates", len(candidates)),
		zap.Int("workers", p.workers),
		zap.Bool("refresh", refresh),
	)

	pool, err := ants.NewPool(p.workers)
	if err != nil {
		return res, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var scraped, failed atomic.Int64
	var wg sync.WaitGroup
	for _, cand := range candidates {
		cand := cand // per-iteration copy: submitted closures outlive the iteration (pre-1.22 loop semantics)
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if err := p.scrapeOne(ctx, cand); err != nil {
				failed.Add(1)
				log.Warn("Scrape failed",
					zap.Int64("company_id", cand.ID),
					zap.String("website", cand.Website),
					zap.Error(err),
				)
				return
			}
			scraped.Add(1)
		}); err != nil {
			wg.Done()
			failed.Add(1)
			log.Warn("Scrape submit failed", zap.Int64("company_id", cand.ID), zap.Error(err))
		}
	}
	wg.Wait()

	res.Scraped = int(scraped.Load())
	res.Failed = int(failed.Load())
	res.Duration = time.Since(start)
	log.Info("Scrape finished",
		zap.Int("scraped", res.Scraped),
		zap.Int("failed", res.Failed),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

func (p *ScrapePipeline) scrapeOne(ctx context.Context, c company.Company) error {
	var markdown string
	b := retry.NewFibonacci(p.backoffBase)
	err := retry.Do(ctx, retry.WithMaxRetries(p.retries, b), func(ctx context.Context) error {
		md, err := p.scraper.Scrape(ctx, c.Website)
		if err != nil {
			return retry.RetryableError(err)
		}
		markdown = md
		return nil
	})
	if err != nil {
		return fmt.Errorf("scrape %s: %w", c.Website, err)
	}

	if err := p.store.UpsertPage(ctx, c.ID, c.Website, markdown); err != nil {
		return fmt.Errorf("store page: %w", err)
	}
	return nil
}

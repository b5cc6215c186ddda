package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/seedscope/ycatlas/internal/domain"
	"github.com/seedscope/ycatlas/internal/domain/company"
)

const (
	// DefaultEmbedBatchSize is the number of texts sent per embedding call.
	DefaultEmbedBatchSize = 64
	// embedMaxRetries bounds extra attempts per batch on provider failures.
	embedMaxRetries = 3
	// maxMarkdownRunes caps how much scraped page text joins the embedding
	// source. Full pages would dominate the vector and the token bill.
	maxMarkdownRunes = 4000
)

// EmbedResult summarizes one embedding run.
type EmbedResult struct {
	RunID      string
	Candidates int
	Embedded   int
	Skipped    int
	Tokens     int
	Duration   time.Duration
}

// EmbedPipeline vectorizes companies whose embedding source text changed
// since the stored vector was computed. Unchanged companies are skipped by
// hash comparison, so re-runs are cheap.
type EmbedPipeline struct {
	embedder    domain.BatchEmbedder
	store       EmbedStore
	batchSize   int
	backoffBase time.Duration
	logger      *zap.Logger
}

// NewEmbedPipeline creates an embedding pipeline. Non-positive batchSize
// falls back to DefaultEmbedBatchSize.
func NewEmbedPipeline(embedder domain.BatchEmbedder, store EmbedStore, batchSize int, logger *zap.Logger) *EmbedPipeline {
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}
	return &EmbedPipeline{
		embedder:    embedder,
		store:       store,
		batchSize:   batchSize,
		backoffBase: time.Second,
		logger:      logger,
	}
}

type embedJob struct {
	companyID int64
	text      string
	hash      string
}

// Run embeds every company whose source hash differs from the stored one.
// The run stops at the first batch failure; vectors written before the
// failure are kept and counted in the result.
func (p *EmbedPipeline) Run(ctx context.Context) (EmbedResult, error) {
	res := EmbedResult{RunID: uuid.NewString()}
	log := p.logger.With(zap.String("run_id", res.RunID))
	start := time.Now()

	candidates, err := p.store.ListEmbedCandidates(ctx)
	if err != nil {
		return res, fmt.Errorf("list embed candidates: %w", err)
	}
	res.Candidates = len(candidates)

	jobs := make([]embedJob, 0, len(candidates))
	for _, cand := range candidates {
		text := embedSource(cand.Company, cand.Markdown)
		if text == "" {
			res.Skipped++
			continue
		}
		hash := sourceHash(text)
		if hash == cand.StoredHash {
			res.Skipped++
			continue
		}
		jobs = append(jobs, embedJob{companyID: cand.Company.ID, text: text, hash: hash})
	}

	if len(jobs) == 0 {
		res.Duration = time.Since(start)
		log.Info("Embeddings up to date", zap.Int("candidates", res.Candidates))
		return res, nil
	}

	log.Info("Embedding started",
		zap.Int("candidates", res.Candidates),
		zap.Int("pending", len(jobs)),
		zap.Int("batch_size", p.batchSize),
	)

	for offset := 0; offset < len(jobs); offset += p.batchSize {
		end := offset + p.batchSize
		if end > len(jobs) {
			end = len(jobs)
		}
		batch := jobs[offset:end]

		result, err := p.embedBatch(ctx, batch)
		if err != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("embed batch at %d: %w", offset, err)
		}
		if len(result.Vectors) != len(batch) {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("embed batch at %d: got %d vectors for %d texts", offset, len(result.Vectors), len(batch))
		}

		now := time.Now().UTC()
		for i, job := range batch {
			if err := p.store.UpsertEmbedding(ctx, job.companyID, result.Vectors[i], job.hash, now); err != nil {
				res.Duration = time.Since(start)
				return res, fmt.Errorf("store embedding for company %d: %w", job.companyID, err)
			}
			res.Embedded++
		}
		res.Tokens += result.TotalTokens
	}

	res.Duration = time.Since(start)
	log.Info("Embedding finished",
		zap.Int("embedded", res.Embedded),
		zap.Int("skipped", res.Skipped),
		zap.Int("tokens", res.Tokens),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// embedBatch calls the provider with backoff. Budget exhaustion is permanent:
// retrying cannot free tokens, so it aborts immediately.
func (p *EmbedPipeline) embedBatch(ctx context.Context, batch []embedJob) (domain.BatchEmbeddingResult, error) {
	texts := make([]string, len(batch))
	for i, job := range batch {
		texts[i] = job.text
	}

	var result domain.BatchEmbeddingResult
	b := retry.NewFibonacci(p.backoffBase)
	err := retry.Do(ctx, retry.WithMaxRetries(embedMaxRetries, b), func(ctx context.Context) error {
		r, err := p.embedder.BatchEmbed(ctx, texts)
		if err != nil {
			if errors.Is(err, domain.ErrTokenBudgetExceeded) {
				return err
			}
			return retry.RetryableError(err)
		}
		result = r
		return nil
	})
	return result, err
}

// embedSource composes the text fed to the embedding provider: the company's
// own description fields plus the opening of its scraped page.
func embedSource(c company.Company, markdown string) string {
	text := c.EmbeddingText()

	md := strings.TrimSpace(markdown)
	if md == "" {
		return text
	}
	if runes := []rune(md); len(runes) > maxMarkdownRunes {
		md = string(runes[:maxMarkdownRunes])
	}
	if text == "" {
		return md
	}
	return text + "\n\n" + md
}

// sourceHash fingerprints the embedding source text for change detection.
func sourceHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SyncResult summarizes one directory sync run.
type SyncResult struct {
	RunID     string
	Companies int
	Duration  time.Duration
}

// SyncPipeline downloads the YC directory and upserts it into the store.
type SyncPipeline struct {
	source DirectorySource
	store  SyncStore
	logger *zap.Logger
}

// NewSyncPipeline creates a directory sync pipeline.
func NewSyncPipeline(source DirectorySource, store SyncStore, logger *zap.Logger) *SyncPipeline {
	return &SyncPipeline{source: source, store: store, logger: logger}
}

// Run fetches the full directory and writes it in one transaction.
func (p *SyncPipeline) Run(ctx context.Context) (SyncResult, error) {
	res := SyncResult{RunID: uuid.NewString()}
	log := p.logger.With(zap.String("run_id", res.RunID))
	start := time.Now()

	log.Info("Directory sync started")

	records, err := p.source.FetchAll(ctx)
	if err != nil {
		return res, fmt.Errorf("fetch directory: %w", err)
	}
	if err := p.store.UpsertCompanies(ctx, records); err != nil {
		return res, fmt.Errorf("upsert companies: %w", err)
	}

	res.Companies = len(records)
	res.Duration = time.Since(start)
	log.Info("Directory sync finished",
		zap.Int("companies", res.Companies),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

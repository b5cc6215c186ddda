package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/seedscope/ycatlas/internal/domain"
	"github.com/seedscope/ycatlas/internal/domain/company"
)

func TestSyncRun(t *testing.T) {
	records := []company.Company{
		{ID: 1, Name: "Alpha"},
		{ID: 2, Name: "Beta"},
		{ID: 3, Name: "Gamma"},
	}
	source := &mockSource{fetchFn: func(context.Context) ([]company.Company, error) {
		return records, nil
	}}
	store := &mockSyncStore{}

	res, err := NewSyncPipeline(source, store, zap.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Companies != 3 {
		t.Errorf("Companies = %d, expected 3", res.Companies)
	}
	if res.RunID == "" {
		t.Error("expected non-empty run id")
	}
	if len(store.got) != 3 || store.got[1].Name != "Beta" {
		t.Errorf("unexpected upserted records: %+v", store.got)
	}
}

func TestSyncRun_SourceErrorPropagates(t *testing.T) {
	source := &mockSource{fetchFn: func(context.Context) ([]company.Company, error) {
		return nil, domain.ErrSyncSourceError
	}}

	_, err := NewSyncPipeline(source, &mockSyncStore{}, zap.NewNop()).Run(context.Background())
	if !errors.Is(err, domain.ErrSyncSourceError) {
		t.Fatalf("expected ErrSyncSourceError, got %v", err)
	}
	if !strings.Contains(err.Error(), "fetch directory") {
		t.Errorf("expected fetch context in error, got %v", err)
	}
}

func TestSyncRun_StoreErrorPropagates(t *testing.T) {
	source := &mockSource{fetchFn: func(context.Context) ([]company.Company, error) {
		return []company.Company{{ID: 1, Name: "Alpha"}}, nil
	}}
	store := &mockSyncStore{upsertFn: func(context.Context, []company.Company) error {
		return errors.New("disk full")
	}}

	_, err := NewSyncPipeline(source, store, zap.NewNop()).Run(context.Background())
	if err == nil {
		t.Fatal("expected error from store")
	}
	if !strings.Contains(err.Error(), "upsert companies") {
		t.Errorf("expected upsert context in error, got %v", err)
	}
}

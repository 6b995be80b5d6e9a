package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Makb000/opportunity-tracker/internal/domain"
	"github.com/Makb000/opportunity-tracker/internal/store"
	"go.uber.org/zap"
)

// DatasetService composes the document store with the collection
// mutators. Every mutating call is one load-mutate-save round trip with
// no state kept between requests; concurrent callers race and the last
// save wins, by contract.
type DatasetService struct {
	store  store.DocumentStore
	logger *zap.Logger
}

// NewDatasetService creates a new DatasetService
func NewDatasetService(st store.DocumentStore, logger *zap.Logger) *DatasetService {
	return &DatasetService{
		store:  st,
		logger: logger,
	}
}

// Get returns the full persisted Dataset.
func (s *DatasetService) Get(ctx context.Context) (*domain.Dataset, error) {
	ds, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return ds, nil
}

// Replace overwrites the whole document from a full-dataset body.
// Collections missing from the body, or supplied as non-arrays, default
// to empty. Duplicate ids are not checked here; a full replace is the
// only way they can enter the document.
func (s *DatasetService) Replace(ctx context.Context, body map[string]json.RawMessage) (map[string]int, error) {
	ds := domain.NewDataset()
	for _, name := range domain.CollectionNames() {
		ds.ReplaceCollection(name, body[name])
	}
	if err := s.store.Save(ctx, ds); err != nil {
		return nil, fmt.Errorf("failed to save dataset: %w", err)
	}
	counts := ds.Counts()
	s.logger.Info("dataset replaced", zap.Any("counts", counts))
	return counts, nil
}

// Merge applies a document-level merge: only collections supplied as
// arrays replace their counterparts, everything else is kept verbatim.
func (s *DatasetService) Merge(ctx context.Context, updates map[string]json.RawMessage) (map[string]int, error) {
	ds, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	ds.Merge(updates)
	if err := s.store.Save(ctx, ds); err != nil {
		return nil, fmt.Errorf("failed to save dataset: %w", err)
	}
	return ds.Counts(), nil
}

// Upsert merges patch into the element with the given id in the named
// collection, inserting it when absent, and persists the result.
func (s *DatasetService) Upsert(ctx context.Context, collection, id string, patch domain.Entity) (domain.Entity, error) {
	ds, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	entity, err := ds.Upsert(collection, id, patch)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, ds); err != nil {
		return nil, fmt.Errorf("failed to save dataset: %w", err)
	}
	s.logger.Info("entity upserted",
		zap.String("collection", collection),
		zap.String("entity_id", id),
	)
	return entity, nil
}

// Delete removes the element with the given id, cascading to dependent
// activities for opportunities. Returns domain.ErrEntityNotFound when
// nothing was removed; the document is not rewritten in that case.
func (s *DatasetService) Delete(ctx context.Context, collection, id string) error {
	ds, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	removed, err := ds.Delete(collection, id)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrEntityNotFound
	}
	if err := s.store.Save(ctx, ds); err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}
	s.logger.Info("entity deleted",
		zap.String("collection", collection),
		zap.String("entity_id", id),
	)
	return nil
}

// Ping reports backing store connectivity for health checks.
func (s *DatasetService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Snapshot writes a copy of the current document under the given name.
// Used by the scheduled backup job.
func (s *DatasetService) Snapshot(ctx context.Context, name string) error {
	ds, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	if err := s.store.SaveSnapshot(ctx, name, ds); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

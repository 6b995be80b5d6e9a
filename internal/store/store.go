// Package store persists the Dataset as one JSON document. The adapter
// is deliberately unsynchronized: concurrent load/save pairs from
// different requests interleave arbitrarily and the last completed save
// wins. Callers must not assume multi-writer safety; adding a lock here
// would change the consistency contract, not fix a bug.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Makb000/opportunity-tracker/internal/config"
	"github.com/Makb000/opportunity-tracker/internal/domain"
	"go.uber.org/zap"
)

// DocumentStore reads and writes the whole Dataset at once.
type DocumentStore interface {
	// Load fetches the persisted document. A missing document is the
	// first-run default and yields a fresh empty Dataset, not an error;
	// any other failure is a *domain.StoreUnavailableError.
	Load(ctx context.Context) (*domain.Dataset, error)
	// Save overwrites the persisted document unconditionally with the
	// full Dataset, pretty-printed. Last-writer-wins.
	Save(ctx context.Context, ds *domain.Dataset) error
	// SaveSnapshot writes a copy of the Dataset under another object
	// name, next to the live document.
	SaveSnapshot(ctx context.Context, name string, ds *domain.Dataset) error
	// Ping is a lightweight connectivity check for health reporting. A
	// missing document with a reachable backing store is healthy.
	Ping(ctx context.Context) error
	// Container and Blob name the backing location for health payloads.
	Container() string
	Blob() string
}

// NewDocumentStore creates a document store based on configuration.
// For local mode the document is a file on the local filesystem.
// For azure mode it is a blob in Azure Blob Storage.
func NewDocumentStore(cfg *config.StorageConfig, logger *zap.Logger) (DocumentStore, error) {
	switch cfg.Mode {
	case "local":
		return NewLocalStore(cfg.LocalBasePath, cfg.FileName, logger)
	case "azure":
		return NewAzureBlobStore(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.Mode)
	}
}

// decodeDataset turns persisted bytes into a normalized Dataset.
// Corruption is a store failure, not a validation concern.
func decodeDataset(data []byte, op string) (*domain.Dataset, error) {
	var ds domain.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, &domain.StoreUnavailableError{Op: op, Err: fmt.Errorf("corrupt document: %w", err)}
	}
	ds.Normalize()
	return &ds, nil
}

// LocalStore implements DocumentStore on the local filesystem
type LocalStore struct {
	basePath string
	fileName string
	logger   *zap.Logger
}

// NewLocalStore creates a local document store rooted at basePath.
func NewLocalStore(basePath, fileName string, logger *zap.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{
		basePath: basePath,
		fileName: fileName,
		logger:   logger,
	}, nil
}

func (s *LocalStore) path() string {
	return filepath.Join(s.basePath, s.fileName)
}

// Load reads the document file, or returns an empty Dataset when the
// file does not exist yet.
func (s *LocalStore) Load(ctx context.Context) (*domain.Dataset, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("no document found, starting with empty dataset",
				zap.String("path", s.path()),
			)
			return domain.NewDataset(), nil
		}
		return nil, &domain.StoreUnavailableError{Op: "load", Err: err}
	}
	return decodeDataset(data, "load")
}

// Save writes the document atomically via a temp file and rename.
func (s *LocalStore) Save(ctx context.Context, ds *domain.Dataset) error {
	return s.write(s.path(), ds)
}

// SaveSnapshot writes a named copy of the document next to the live one.
func (s *LocalStore) SaveSnapshot(ctx context.Context, name string, ds *domain.Dataset) error {
	return s.write(filepath.Join(s.basePath, name), ds)
}

func (s *LocalStore) write(path string, ds *domain.Dataset) error {
	data, err := ds.MarshalPretty()
	if err != nil {
		return &domain.StoreUnavailableError{Op: "save", Err: err}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return &domain.StoreUnavailableError{Op: "save", Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		return &domain.StoreUnavailableError{Op: "save", Err: err}
	}
	return nil
}

// Ping verifies the storage directory is reachable.
func (s *LocalStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.basePath); err != nil {
		return &domain.StoreUnavailableError{Op: "ping", Err: err}
	}
	return nil
}

func (s *LocalStore) Container() string { return s.basePath }
func (s *LocalStore) Blob() string      { return s.fileName }

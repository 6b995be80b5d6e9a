package store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Makb000/opportunity-tracker/internal/config"
	"github.com/Makb000/opportunity-tracker/internal/domain"
	"go.uber.org/zap"
)

var jsonContentType = "application/json"

// AzureBlobStore implements DocumentStore on Azure Blob Storage
type AzureBlobStore struct {
	client    *azblob.Client
	container string
	blob      string
	logger    *zap.Logger
}

// NewAzureBlobStore creates an Azure-backed document store. A
// connection string takes precedence; otherwise the account URL is used
// with DefaultAzureCredential (Entra ID / managed identity).
func NewAzureBlobStore(cfg *config.StorageConfig, logger *zap.Logger) (*AzureBlobStore, error) {
	var client *azblob.Client
	var err error

	switch {
	case cfg.ConnectionString != "":
		client, err = azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	case cfg.AccountURL != "":
		var cred *azidentity.DefaultAzureCredential
		cred, err = azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure credential: %w", err)
		}
		client, err = azblob.NewClient(cfg.AccountURL, cred, nil)
	default:
		return nil, fmt.Errorf("azure storage requires a connection string or account URL")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	// Ensure container exists
	_, err = client.CreateContainer(context.Background(), cfg.Container, nil)
	if err != nil && !strings.Contains(err.Error(), "ContainerAlreadyExists") {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	logger.Info("Azure Blob Storage initialized",
		zap.String("container", cfg.Container),
		zap.String("blob", cfg.Blob),
	)

	return &AzureBlobStore{
		client:    client,
		container: cfg.Container,
		blob:      cfg.Blob,
		logger:    logger,
	}, nil
}

// Load downloads the document blob. A missing blob (or container) is
// the first-run default and yields an empty Dataset.
func (s *AzureBlobStore) Load(ctx context.Context) (*domain.Dataset, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, s.blob, nil)
	if err != nil {
		if isNotFound(err) {
			s.logger.Debug("document blob not found, starting with empty dataset",
				zap.String("blob", s.blob),
			)
			return domain.NewDataset(), nil
		}
		return nil, &domain.StoreUnavailableError{Op: "load", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.StoreUnavailableError{Op: "load", Err: err}
	}
	return decodeDataset(data, "load")
}

// Save uploads the full document, overwriting the previous version
// unconditionally. No lease, no ETag precondition: last-writer-wins.
func (s *AzureBlobStore) Save(ctx context.Context, ds *domain.Dataset) error {
	return s.upload(ctx, s.blob, ds)
}

// SaveSnapshot uploads a named copy of the document into the same
// container.
func (s *AzureBlobStore) SaveSnapshot(ctx context.Context, name string, ds *domain.Dataset) error {
	return s.upload(ctx, name, ds)
}

func (s *AzureBlobStore) upload(ctx context.Context, blobName string, ds *domain.Dataset) error {
	data, err := ds.MarshalPretty()
	if err != nil {
		return &domain.StoreUnavailableError{Op: "save", Err: err}
	}

	uploadOptions := &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &jsonContentType,
		},
	}
	if _, err := s.client.UploadBuffer(ctx, s.container, blobName, data, uploadOptions); err != nil {
		return &domain.StoreUnavailableError{Op: "save", Err: err}
	}

	s.logger.Debug("document saved",
		zap.String("blob", blobName),
		zap.Int("size", len(data)),
	)
	return nil
}

// Ping checks blob properties as a lightweight connectivity probe. A
// missing blob still counts as connected.
func (s *AzureBlobStore) Ping(ctx context.Context) error {
	blobClient := s.client.ServiceClient().
		NewContainerClient(s.container).
		NewBlobClient(s.blob)
	if _, err := blobClient.GetProperties(ctx, nil); err != nil {
		if isNotFound(err) {
			return nil
		}
		return &domain.StoreUnavailableError{Op: "ping", Err: err}
	}
	return nil
}

func (s *AzureBlobStore) Container() string { return s.container }
func (s *AzureBlobStore) Blob() string      { return s.blob }

func isNotFound(err error) bool {
	return err != nil &&
		(strings.Contains(err.Error(), "BlobNotFound") ||
			strings.Contains(err.Error(), "ContainerNotFound"))
}

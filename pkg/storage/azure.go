package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"go.uber.org/zap"

	"github.com/heighterses/cenaris/pkg/apperrors"
)

// AzureStore implements BlobStore against one Azure Blob Storage container.
type AzureStore struct {
	client    *azblob.Client
	container string
	logger    *zap.Logger
}

// NewAzureStore creates an AzureStore authenticated with a storage account
// connection string, scoped to the given container.
func NewAzureStore(connectionString, container string, logger *zap.Logger) (*AzureStore, error) {
	if connectionString == "" {
		return nil, apperrors.ErrStorageNotConfigured
	}

	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &AzureStore{
		client:    client,
		container: container,
		logger:    logger,
	}, nil
}

// Download returns the blob's bytes, mapping Azure's not-found responses to
// apperrors.ErrNotFound.
func (s *AzureStore) Download(ctx context.Context, path string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, path, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to download blob %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", path, err)
	}
	return data, nil
}

// Upload writes the blob with the given content type and metadata.
func (s *AzureStore) Upload(ctx context.Context, path string, body io.Reader, contentType string, metadata map[string]string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read upload body: %w", err)
	}

	opts := &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	}
	if len(metadata) > 0 {
		opts.Metadata = make(map[string]*string, len(metadata))
		for k, v := range metadata {
			value := v
			opts.Metadata[k] = &value
		}
	}

	if _, err := s.client.UploadBuffer(ctx, s.container, path, data, opts); err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", path, err)
	}

	s.logger.Debug("Uploaded blob",
		zap.String("container", s.container),
		zap.String("path", path),
		zap.Int("size", len(data)))
	return nil
}

// Delete removes the blob.
func (s *AzureStore) Delete(ctx context.Context, path string) error {
	if _, err := s.client.DeleteBlob(ctx, s.container, path, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to delete blob %s: %w", path, err)
	}
	return nil
}

// List returns all blobs under the given prefix.
func (s *AzureStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	pager := s.client.NewListBlobsFlatPager(s.container, &azblob.ListBlobsFlatOptions{
		Prefix: &prefix,
	})

	var objects []ObjectInfo
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			if bloberror.HasCode(err, bloberror.ContainerNotFound) {
				return nil, apperrors.ErrNotFound
			}
			return nil, fmt.Errorf("failed to list blobs under %s: %w", prefix, err)
		}

		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			info := ObjectInfo{Path: *item.Name}
			if item.Properties != nil {
				if item.Properties.ContentLength != nil {
					info.Size = *item.Properties.ContentLength
				}
				if item.Properties.LastModified != nil {
					info.LastModified = *item.Properties.LastModified
				}
			}
			objects = append(objects, info)
		}
	}
	return objects, nil
}

// Ensure AzureStore implements BlobStore at compile time.
var _ BlobStore = (*AzureStore)(nil)

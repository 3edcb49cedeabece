package keystore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/openews/report-server/internal/appconfig"
	"github.com/openews/report-server/internal/models"
) // .import

var (
	errStorageNameEmpty              = errors.New("error storage name from app config is empty")
	errStorageKeyEmpty               = errors.New("error storage key from app config is empty")
	errStorageContainerEndpointEmpty = errors.New("error storage container endpoint from app config is empty")
) // .var

type AzureStore struct {
	Client   *azblob.Client
	BlobPath string
}

// NewAzureStore returns a key store backed by an azure blob client
func NewAzureStore(conf appconfig.AzureStorageConfig, blobPath string) (*AzureStore, error) {
	client, err := newAzBlobClient(conf.StorageName, conf.StorageKey, conf.ContainerEndpoint)
	if err != nil {
		return nil, err
	}
	return &AzureStore{
		Client:   client,
		BlobPath: blobPath,
	}, nil
} // .NewAzureStore

// newAzBlobClient, method for returning azure blob client for a storage needed
func newAzBlobClient(azStorageName, azStorageKey, azContainerEndpoint string) (*azblob.Client, error) {

	// check guard if names are not empty
	if len(strings.TrimSpace(azStorageName)) == 0 {
		return nil, errStorageNameEmpty
	} // .if

	if len(strings.TrimSpace(azStorageKey)) == 0 {
		return nil, errStorageKeyEmpty
	} // .if

	if len(strings.TrimSpace(azContainerEndpoint)) == 0 {
		return nil, errStorageContainerEndpointEmpty
	} // .if

	credential, err := azblob.NewSharedKeyCredential(azStorageName, azStorageKey)
	if err != nil {
		return nil, err
	} // .if

	client, err := azblob.NewClientWithSharedKeyCredential(azContainerEndpoint, credential, nil)
	if err != nil {
		return nil, err
	} // .if

	return client, nil
} // .newAzBlobClient

func (s *AzureStore) Read(ctx context.Context, blobPath string) (string, error) {
	containerName, blobName := SplitPath(blobPath)

	resp, err := s.Client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return "", errors.Join(ErrStoreRead, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Join(ErrStoreRead, err)
	}
	return string(b), nil
}

func (s *AzureStore) Health(ctx context.Context) (rsp models.ServiceHealthResp) {
	rsp.Service = models.KEY_STORE
	rsp.Status = models.STATUS_UP
	rsp.HealthIssue = models.HEALTH_ISSUE_NONE

	if s.Client == nil {
		return rsp.BuildErrorResponse(errors.New(models.AZ_BLOB_CLIENT_NA))
	}

	containerName, _ := SplitPath(s.BlobPath)
	if _, err := s.Client.ServiceClient().NewContainerClient(containerName).GetProperties(ctx, nil); err != nil {
		return rsp.BuildErrorResponse(fmt.Errorf("key list container %s: %w", containerName, err))
	}
	return rsp
}

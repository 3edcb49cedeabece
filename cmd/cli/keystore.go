package cli

import (
	"context"

	"github.com/openews/report-server/internal/appconfig"
	"github.com/openews/report-server/internal/health"
	"github.com/openews/report-server/internal/keystore"
)

// CreateKeyStore binds the authorized api key list to its object store
// backend: azure blob, s3, or a local folder when nothing else is bound.
func CreateKeyStore(ctx context.Context, appConfig appconfig.AppConfig) (keystore.Store, health.Checkable, error) {
	if appConfig.AzureConnection != nil {
		if err := appConfig.AzureConnection.Check(); err != nil {
			return nil, nil, err
		}

		logger.Info("Using Azure endpoint for key store", "endpoint", appConfig.AzureConnection.ContainerEndpoint)
		store, err := keystore.NewAzureStore(*appConfig.AzureConnection, appConfig.AuthorizedApiKeysBlobPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	} // .if

	if appConfig.S3Connection != nil {
		store, err := keystore.NewS3Store(ctx, *appConfig.S3Connection, appConfig.AuthorizedApiKeysBlobPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	}

	store := &keystore.FileStore{Root: appConfig.LocalKeyStoreFolder}
	return store, store, nil
} // .CreateKeyStore

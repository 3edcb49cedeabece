package cli

import (
	"context"

	"github.com/openews/report-server/internal/appconfig"
	"github.com/openews/report-server/internal/health"
	"github.com/openews/report-server/internal/reportstore"
)

// CreateReportStore binds the report store to postgres when configured and
// falls back to the in-memory store for local development.
func CreateReportStore(ctx context.Context, appConfig appconfig.AppConfig) (reportstore.Store, error) {
	if appConfig.PostgresConnection != nil {
		store, err := reportstore.NewPostgresStore(ctx, appConfig.PostgresConnection.ConnectionString)
		if err != nil {
			logger.Error("error connecting to report store", "error", err)
			return nil, err
		}
		health.Register(store)
		return store, nil
	}

	logger.Warn("no report store configured; reports will not survive a restart")
	return reportstore.NewMemoryStore(), nil
}

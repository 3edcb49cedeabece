package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/openews/report-server/internal/appconfig"
	"github.com/openews/report-server/internal/dashboard"
	"github.com/openews/report-server/internal/event"
	"github.com/openews/report-server/internal/handlerews"
	"github.com/openews/report-server/internal/health"
	"github.com/openews/report-server/internal/ingest"
	"github.com/openews/report-server/internal/localization"
	"github.com/openews/report-server/internal/metrics"
	"github.com/openews/report-server/internal/registration"
	"github.com/openews/report-server/internal/reports"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Serve(ctx context.Context, appConfig appconfig.AppConfig) (http.Handler, error) {

	keyStore, keyStoreHealthCheck, err := CreateKeyStore(ctx, appConfig)
	if err != nil {
		logger.Error("error starting app, error configuring key store", "error", err)
		return nil, err
	}
	health.Register(keyStoreHealthCheck)

	// the memory bus backs both sides of the queue when no broker is bound
	bus := &event.MemoryBus[*event.ReportReceived]{
		Chan: make(chan *event.ReportReceived, 100),
	}

	publishers, err := NewEventPublisher[*event.ReportReceived](ctx, appConfig, bus)
	if err != nil {
		logger.Error("error starting app, error configuring report publisher", "error", err)
		return nil, err
	}
	event.ReportPublisher = publishers

	subscriber, err := NewEventSubscriber[*event.ReportReceived](ctx, appConfig, bus)
	if err != nil {
		logger.Error("error starting app, error configuring report subscriber", "error", err)
		return nil, err
	}

	store, err := CreateReportStore(ctx, appConfig)
	if err != nil {
		return nil, err
	}

	vault, err := localization.Load(appConfig.StringsFilePath)
	if err != nil {
		logger.Error("error starting app, error loading localized strings", "path", appConfig.StringsFilePath, "error", err)
		return nil, err
	}

	var registrar registration.Registrar = registration.Noop{}
	if appConfig.RegistrationApiBaseUrl != "" {
		client := registration.NewClient(appConfig.RegistrationApiBaseUrl)
		health.Register(client)
		registrar = client
	}

	weekStartDay, err := appconfig.ParseWeekday(appConfig.EpiWeekStartDay)
	if err != nil {
		return nil, err
	}

	worker := &ingest.Worker{
		Store:        store,
		WeekStartDay: weekStartDay,
	}
	go func() {
		if err := subscriber.Listen(ctx, TracingProcessor(worker.Handle)); err != nil {
			logger.Error("report subscriber stopped", "error", err)
		}
	}()

	gateway := &ingest.Gateway{
		Keys:      keyStore,
		Publisher: publishers,
		KeysBlobPath: func() string {
			return appconfig.LoadedConfig.AuthorizedApiKeysBlobPath
		},
	}

	reportsSvc := &reports.Service{
		Store:       store,
		Vault:       vault,
		Registrar:   registrar,
		RowsPerPage: appConfig.PaginationRowsPerPage,
	}

	dashboardEngine := &dashboard.Engine{
		Store:                 store,
		MaxGroupedHealthRisks: appConfig.MaxGroupedHealthRisks,
		MaxGroupedVillages:    appConfig.MaxGroupedVillages,
		WeekStartDay:          weekStartDay,
	}

	handlerEws := handlerews.New(appConfig, gateway, reportsSvc, dashboardEngine)
	handlerEws.Routes(http.DefaultServeMux)

	// --------------------------------------------------------------
	// 	Prometheus metrics handler for /metrics
	// --------------------------------------------------------------
	http.Handle("/metrics", promhttp.Handler())
	setupMetrics()
	metrics.DefaultPoller.Start(ctx, 30*time.Second)

	return http.DefaultServeMux, nil
}

package handlerews

import (
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/openews/report-server/internal/appconfig"
	"github.com/openews/report-server/internal/dashboard"
	"github.com/openews/report-server/internal/health"
	"github.com/openews/report-server/internal/ingest"
	"github.com/openews/report-server/internal/middleware"
	"github.com/openews/report-server/internal/reports"
	"github.com/openews/report-server/pkg/sloger"
) // .import

type HandlerEws struct {
	appConfig appconfig.AppConfig
	logger    *slog.Logger

	Gateway   *ingest.Gateway
	Reports   *reports.Service
	Dashboard *dashboard.Engine
} // .HandlerEws

// New returns an EWS server handler that can handle http requests
func New(appConfig appconfig.AppConfig, gateway *ingest.Gateway, reportsSvc *reports.Service, dashboardEngine *dashboard.Engine) *HandlerEws {

	type Empty struct{}
	pkgParts := strings.Split(reflect.TypeOf(Empty{}).PkgPath(), "/")
	// add package name to app logger
	logger := sloger.With("pkg", pkgParts[len(pkgParts)-1])

	logger.Info("started ews handler")

	return &HandlerEws{
		appConfig: appConfig,
		logger:    logger,
		Gateway:   gateway,
		Reports:   reportsSvc,
		Dashboard: dashboardEngine,
	} // .&HandlerEws
} // .New

// ServeHTTP handles the default routes; the report api routes are registered
// on the mux by Routes
func (he HandlerEws) ServeHTTP(w http.ResponseWriter, r *http.Request) {

	switch r.URL.Path {

	case "/":
		appconfig.Handler().ServeHTTP(w, r)

	case "/health":
		health.Handler().ServeHTTP(w, r)

	case "/version":
		he.version(w, r)

	// all other non-specified routes
	default:
		http.NotFound(w, r)

	} // .switch

} // .ServeHTTP

// Routes registers the report api on the mux. The list and cross-check
// routes resolve the viewer from the bearer token.
func (he *HandlerEws) Routes(mux *http.ServeMux) {
	mux.Handle("POST /api/report/enqueue", he.enqueueHandler(ingest.NewGenericNormalizer()))
	mux.Handle("POST /api/report/enqueueSmsEagle", he.enqueueHandler(ingest.NewSmsEagleNormalizer()))
	mux.Handle("POST /api/report/enqueueSmsGateway", he.enqueueHandler(ingest.NewSmsGatewayNormalizer()))
	mux.Handle("POST /api/report/enqueueSmsGatewayMtn", he.enqueueMtnHandler())
	mux.Handle("POST /api/report/enqueueTelerivet", he.enqueueHandler(ingest.NewTelerivetNormalizer()))

	secret := he.appConfig.TokenSigningSecret
	mux.Handle("POST /api/reports/list", middleware.VerifyViewer(secret, http.HandlerFunc(he.list)))
	mux.Handle("POST /api/reports/{id}/accept", middleware.VerifyViewer(secret, http.HandlerFunc(he.accept)))
	mux.Handle("POST /api/reports/{id}/dismiss", middleware.VerifyViewer(secret, http.HandlerFunc(he.dismiss)))

	mux.Handle("POST /api/dashboard/reportsByDate", middleware.VerifyViewer(secret, http.HandlerFunc(he.reportsByDate)))
	mux.Handle("POST /api/dashboard/reportsByHealthRisk", middleware.VerifyViewer(secret, http.HandlerFunc(he.reportsByHealthRisk)))
	mux.Handle("POST /api/dashboard/reportsByVillage", middleware.VerifyViewer(secret, http.HandlerFunc(he.reportsByVillage)))

	mux.Handle("/", he)
} // .Routes

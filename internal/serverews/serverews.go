package serverews

import (
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/openews/report-server/internal/appconfig"
	"github.com/openews/report-server/internal/metrics"
	"github.com/openews/report-server/pkg/sloger"
) // .import

// ServerEws, main Report Api server, handles the ingestion and query routes
type ServerEws struct {
	AppConfig appconfig.AppConfig

	logger *slog.Logger
} // .ServerEws

// New returns a custom server for the EWS Report Api ready to serve
func New(appConfig appconfig.AppConfig) (ServerEws, error) {

	type Empty struct{}
	pkgParts := strings.Split(reflect.TypeOf(Empty{}).PkgPath(), "/")
	// add package name to app logger
	logger := sloger.With("pkg", pkgParts[len(pkgParts)-1])
	sloger.SetDefaultLogger(logger)

	return ServerEws{
		AppConfig: appConfig,
		logger:    logger,
	}, nil // .return

} // New

// HttpServer, adds the routes for the ews handlers and can customize the server with port address
func (se *ServerEws) HttpServer() http.Server {

	// --------------------------------------------------------------
	// 		Custom Server, if needed to customize
	// --------------------------------------------------------------
	return http.Server{

		Addr: ":" + se.AppConfig.ServerPort,

		Handler: metrics.TrackHTTP(http.DefaultServeMux),
		// etc...

	} // .httpServer
} // .HttpServer

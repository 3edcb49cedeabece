package handlerews

import (
	"net/http"

	"github.com/openews/report-server/internal/version"
)

// version provide git repo and version from where this app was built
func (he *HandlerEws) version(w http.ResponseWriter, r *http.Request) {
	version.Handler().ServeHTTP(w, r)
} // .version

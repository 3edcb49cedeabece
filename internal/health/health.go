package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/openews/report-server/internal/models"
	"github.com/openews/report-server/pkg/sloger"
)

var logger *slog.Logger

func init() {
	type Empty struct{}
	pkgParts := strings.Split(reflect.TypeOf(Empty{}).PkgPath(), "/")
	// add package name to app logger
	logger = sloger.With("pkg", pkgParts[len(pkgParts)-1])
}

// Checkable is implemented by every dependency that can report its own health.
type Checkable interface {
	Health(ctx context.Context) models.ServiceHealthResp
}

var (
	mu         sync.Mutex
	checkables []Checkable
)

func Register(c ...Checkable) {
	mu.Lock()
	defer mu.Unlock()
	checkables = append(checkables, c...)
}

type AppHealthResp struct {
	Status   string                    `json:"status"`
	Time     string                    `json:"time"`
	Services []models.ServiceHealthResp `json:"services"`
}

func Check(ctx context.Context) AppHealthResp {
	mu.Lock()
	registered := make([]Checkable, len(checkables))
	copy(registered, checkables)
	mu.Unlock()

	resp := AppHealthResp{
		Status: models.STATUS_UP,
		Time:   time.Now().Format(time.RFC3339),
	}
	for _, c := range registered {
		svc := c.Health(ctx)
		if svc.Status != models.STATUS_UP {
			resp.Status = models.STATUS_DEGRADED
		}
		resp.Services = append(resp.Services, svc)
	}
	return resp
}

func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := Check(r.Context())
		jsonResp, err := json.Marshal(resp)
		if err != nil {
			logger.Error("error marshal json for health response", "error", err.Error())
			http.Error(w, "error building health response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResp)
	})
}

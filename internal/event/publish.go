package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/openews/report-server/internal/health"
	"github.com/openews/report-server/internal/metrics"
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

type Publisher[T Identifiable] interface {
	health.Checkable
	io.Closer
	Publish(ctx context.Context, event T) error
}

// Publishers fans one event out to every configured backend.
type Publishers[T Identifiable] []Publisher[T]

func (ps Publishers[T]) Publish(ctx context.Context, event T) error {
	var errs []error
	for _, p := range ps {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	metrics.EventsCounter.WithLabelValues(metrics.ReportEventsQueue, "publish").Inc()
	return nil
}

func (ps Publishers[T]) Close() error {
	var errs []error
	for _, p := range ps {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ps Publishers[T]) Health(ctx context.Context) (rsp models.ServiceHealthResp) {
	rsp.Service = "Report Queue Publishing"
	rsp.Status = models.STATUS_UP
	rsp.HealthIssue = models.HEALTH_ISSUE_NONE
	for _, p := range ps {
		if sub := p.Health(ctx); sub.Status != models.STATUS_UP {
			return sub
		}
	}
	return rsp
}

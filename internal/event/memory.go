package event

import (
	"context"
	"log/slog"

	"github.com/openews/report-server/internal/metrics"
	"github.com/openews/report-server/internal/models"
)

type MemoryBus[T Identifiable] struct {
	Chan   chan T
	closed bool
}

func (ms *MemoryBus[T]) Listen(ctx context.Context, process func(context.Context, T) error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-ms.Chan:
			if err := process(ctx, evt); err != nil {
				slog.Error("failed to handle report event", "event", evt, "error", err.Error())
				if evt.RetryCount() < MaxRetries {
					evt.IncrementRetryCount()
					// Retrying in a separate go routine so this doesn't block on channel write.
					go func() {
						ms.Chan <- evt
					}()
				}
				continue
			}
			metrics.EventsCounter.WithLabelValues(metrics.ReportEventsQueue, "process").Inc()
		}
	}
}

func (ms *MemoryBus[T]) Close() error {
	ms.closed = true
	return nil
}

func (ms *MemoryBus[T]) Health(_ context.Context) (rsp models.ServiceHealthResp) {
	rsp.Service = "Memory Report Bus"
	rsp.Status = models.STATUS_UP
	rsp.HealthIssue = models.HEALTH_ISSUE_NONE
	return rsp
}

func (ms *MemoryBus[T]) Publish(_ context.Context, event T) error {
	if ms.Chan != nil && !ms.closed {
		go func() {
			ms.Chan <- event
		}()
	}
	return nil
}

func (ms *MemoryBus[T]) Length(_ context.Context) (float64, error) {
	return float64(len(ms.Chan)), nil
}

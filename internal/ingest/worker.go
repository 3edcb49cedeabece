package ingest

import (
	"context"
	"time"

	"github.com/openews/report-server/internal/epitime"
	"github.com/openews/report-server/internal/event"
	"github.com/openews/report-server/internal/metrics"
	"github.com/openews/report-server/internal/models"
	"github.com/openews/report-server/internal/reportstore"
)

// Worker consumes report received events off the queue and persists them.
// Matching a sender to a data collector and classifying the health risk
// happen downstream against the national society registry; the worker stores
// the report as an unmatched new report with the epi week stamped.
type Worker struct {
	Store        reportstore.Store
	WeekStartDay time.Weekday
}

// Handle persists one dequeued report. Returned errors push the message back
// to the broker's retry/dead-letter policy.
func (w *Worker) Handle(ctx context.Context, e *event.ReportReceived) error {
	receivedAt := e.ReceivedAt.UTC()
	// the stamped epi week must always agree with a recomputation from
	// receivedAt and the configured week start day
	epi := epitime.EpiDateOf(receivedAt, w.WeekStartDay)

	r := models.Report{
		ReceivedAt: receivedAt,
		Status:     models.ReportStatusNew,
		ReportType: models.ReportTypeSingle,
		Sender:     senderOf(e),
		Text:       e.Content,
		EpiYear:    epi.EpiYear,
		EpiWeek:    epi.EpiWeek,
	}
	if err := w.Store.Save(ctx, &r); err != nil {
		logger.Error("failed to persist dequeued report", "transactionId", e.TransactionId, "error", err.Error())
		return err
	}

	metrics.ReportsPersistedTotal.WithLabelValues(string(e.Channel)).Inc()
	logger.Info("report persisted", "reportId", r.Id, "channel", e.Channel, "transactionId", e.TransactionId)
	return nil
}

func senderOf(e *event.ReportReceived) string {
	for _, field := range []string{"sender", "from_number_e164", "senderAddress"} {
		if v := e.Fields[field]; v != "" {
			return v
		}
	}
	return ""
}

package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/openews/report-server/internal/epitime"
	"github.com/openews/report-server/internal/event"
	"github.com/openews/report-server/internal/models"
	"github.com/openews/report-server/internal/reportstore"
)

func TestWorkerPersistsWithEpiWeekStamp(t *testing.T) {
	store := reportstore.NewMemoryStore()
	w := &Worker{Store: store, WeekStartDay: time.Sunday}

	received := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	e := event.NewReportReceivedEvent(models.RawReportSubmission{
		SourceChannel:  models.ChannelTelerivet,
		RawText:        "1!2!3",
		ReceivedFields: map[string]string{"from_number_e164": "+220123456"},
	}, received)

	if err := w.Handle(context.Background(), e); err != nil {
		t.Fatalf("expected no error, got %s", err.Error())
	}

	got, err := store.Select(context.Background(), reportstore.Filter{})
	if err != nil {
		t.Fatalf("expected no error on select, got %s", err.Error())
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 persisted report, got %d", len(got))
	}
	r := got[0]
	if r.Status != models.ReportStatusNew {
		t.Errorf("expected status New, got %s", r.Status)
	}
	if r.Sender != "+220123456" {
		t.Errorf("expected sender from fields, got %q", r.Sender)
	}
	if r.Text != "1!2!3" {
		t.Errorf("expected raw text kept, got %q", r.Text)
	}

	want := epitime.EpiDateOf(received, time.Sunday)
	if r.EpiYear != want.EpiYear || r.EpiWeek != want.EpiWeek {
		t.Errorf("expected stamped epi week %d/%d to agree with recomputation, got %d/%d",
			want.EpiYear, want.EpiWeek, r.EpiYear, r.EpiWeek)
	}
}

package event

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/openews/report-server/internal/metrics"
	"github.com/openews/report-server/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewReportReceivedEvent(t *testing.T) {
	sub := models.RawReportSubmission{
		SourceChannel: models.ChannelSmsEagle,
		RawText:       "1!2!3",
		TransactionId: "tx-123",
	}
	received := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	e := NewReportReceivedEvent(sub, received)
	if e.Event.Type != ReportReceivedEventType {
		t.Errorf("expected event type %s, got %s", ReportReceivedEventType, e.Event.Type)
	}
	if e.TransactionId != "tx-123" {
		t.Errorf("expected transaction id to carry over, got %s", e.TransactionId)
	}
	if e.Channel != models.ChannelSmsEagle {
		t.Errorf("expected channel %s, got %s", models.ChannelSmsEagle, e.Channel)
	}
	if !e.ReceivedAt.Equal(received) {
		t.Errorf("expected received at %s, got %s", received, e.ReceivedAt)
	}
}

func TestNewReportReceivedEventGeneratesTransactionId(t *testing.T) {
	e := NewReportReceivedEvent(models.RawReportSubmission{SourceChannel: models.ChannelGeneric}, time.Now().UTC())
	if e.TransactionId == "" {
		t.Error("expected a generated transaction id when the channel supplied none")
	}
}

func TestMemoryBusPublishAndListen(t *testing.T) {
	bus := &MemoryBus[*ReportReceived]{Chan: make(chan *ReportReceived, 1)}
	defer bus.Close()

	e := NewReportReceivedEvent(models.RawReportSubmission{
		SourceChannel: models.ChannelTelerivet,
		RawText:       "fever report",
		TransactionId: "tx-listen",
	}, time.Now().UTC())

	if err := bus.Publish(context.Background(), e); err != nil {
		t.Fatalf("expected no error on publish, got %s", err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan *ReportReceived, 1)
	go bus.Listen(ctx, func(_ context.Context, evt *ReportReceived) error {
		got <- evt
		return nil
	})

	select {
	case evt := <-got:
		if evt.TransactionId != "tx-listen" {
			t.Errorf("expected transaction id tx-listen, got %s", evt.TransactionId)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event delivery")
	}
	cancel()
}

func TestMemoryBusRetriesFailedEvents(t *testing.T) {
	bus := &MemoryBus[*ReportReceived]{Chan: make(chan *ReportReceived, 1)}
	defer bus.Close()

	e := NewReportReceivedEvent(models.RawReportSubmission{
		SourceChannel: models.ChannelSmsGateway,
		TransactionId: "tx-retry",
	}, time.Now().UTC())

	if err := bus.Publish(context.Background(), e); err != nil {
		t.Fatalf("expected no error on publish, got %s", err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	attempts := make(chan int, MaxRetries+1)
	go bus.Listen(ctx, func(_ context.Context, evt *ReportReceived) error {
		attempts <- evt.RetryCount()
		return errors.New("transient store failure")
	})

	first := <-attempts
	if first != 0 {
		t.Errorf("expected first attempt with retry count 0, got %d", first)
	}
	select {
	case second := <-attempts:
		if second != 1 {
			t.Errorf("expected second attempt with retry count 1, got %d", second)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for retry")
	}
	cancel()
}

func TestNewEventFromServiceBusMessage(t *testing.T) {
	e := NewReportReceivedEvent(models.RawReportSubmission{
		SourceChannel: models.ChannelSmsEagle,
		RawText:       "1!2!3",
		TransactionId: "tx-sb",
	}, time.Now().UTC())
	body, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("expected no error marshaling event, got %s", err.Error())
	}

	got, err := NewEventFromServiceBusMessage[*ReportReceived](&azservicebus.ReceivedMessage{
		Body:      body,
		MessageID: "sb-1",
	})
	if err != nil {
		t.Fatalf("expected no decode error, got %s", err.Error())
	}
	if got.Identifier() != "sb-1" {
		t.Errorf("expected message id as identifier, got %s", got.Identifier())
	}
	if got.TransactionId != "tx-sb" {
		t.Errorf("expected transaction id tx-sb, got %s", got.TransactionId)
	}
}

func TestNewEventFromServiceBusMessageMalformedBody(t *testing.T) {
	_, err := NewEventFromServiceBusMessage[*ReportReceived](&azservicebus.ReceivedMessage{
		Body:      []byte("not json"),
		MessageID: "sb-2",
	})
	if err == nil {
		t.Error("expected decode error for a malformed body")
	}
}

func TestFilePublisherWritesEvent(t *testing.T) {
	dir := t.TempDir()
	fp := &FilePublisher[*ReportReceived]{Dir: dir}

	e := NewReportReceivedEvent(models.RawReportSubmission{
		SourceChannel: models.ChannelMtnGateway,
		RawText:       "1!5!2",
		TransactionId: "tx-file",
	}, time.Now().UTC())

	if err := fp.Publish(context.Background(), e); err != nil {
		t.Fatalf("expected no error on publish, got %s", err.Error())
	}

	b, err := os.ReadFile(filepath.Join(dir, e.Identifier()+TypeSeparator+e.Type()))
	if err != nil {
		t.Fatalf("expected event file to exist, got %s", err.Error())
	}
	var got ReportReceived
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("expected valid event json, got %s", err.Error())
	}
	if got.Content != "1!5!2" {
		t.Errorf("expected content 1!5!2, got %s", got.Content)
	}
}

func TestPublishersFanOut(t *testing.T) {
	busA := &MemoryBus[*ReportReceived]{Chan: make(chan *ReportReceived, 1)}
	busB := &MemoryBus[*ReportReceived]{Chan: make(chan *ReportReceived, 1)}
	pubs := Publishers[*ReportReceived]{busA, busB}
	defer pubs.Close()

	e := NewReportReceivedEvent(models.RawReportSubmission{TransactionId: "tx-fan"}, time.Now().UTC())
	if err := pubs.Publish(context.Background(), e); err != nil {
		t.Fatalf("expected no error on fan out publish, got %s", err.Error())
	}

	for _, bus := range []*MemoryBus[*ReportReceived]{busA, busB} {
		select {
		case got := <-bus.Chan:
			if got.TransactionId != "tx-fan" {
				t.Errorf("expected transaction id tx-fan, got %s", got.TransactionId)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for fan out delivery")
		}
	}
}

func TestPublishCountsEvent(t *testing.T) {
	counter := metrics.EventsCounter.WithLabelValues(metrics.ReportEventsQueue, "publish")
	before := testutil.ToFloat64(counter)

	bus := &MemoryBus[*ReportReceived]{Chan: make(chan *ReportReceived, 1)}
	pubs := Publishers[*ReportReceived]{bus}
	defer pubs.Close()

	e := NewReportReceivedEvent(models.RawReportSubmission{TransactionId: "tx-count"}, time.Now().UTC())
	if err := pubs.Publish(context.Background(), e); err != nil {
		t.Fatalf("expected no error on publish, got %s", err.Error())
	}

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("expected publish counter to advance by 1, got %v", got)
	}
}

func TestListenCountsProcessedEvent(t *testing.T) {
	counter := metrics.EventsCounter.WithLabelValues(metrics.ReportEventsQueue, "process")
	before := testutil.ToFloat64(counter)

	bus := &MemoryBus[*ReportReceived]{Chan: make(chan *ReportReceived, 1)}
	defer bus.Close()

	e := NewReportReceivedEvent(models.RawReportSubmission{TransactionId: "tx-processed"}, time.Now().UTC())
	if err := bus.Publish(context.Background(), e); err != nil {
		t.Fatalf("expected no error on publish, got %s", err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Listen(ctx, func(_ context.Context, _ *ReportReceived) error {
		return nil
	})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if testutil.ToFloat64(counter)-before >= 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("timed out waiting for the process counter to advance")
}

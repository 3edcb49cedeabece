package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/openews/report-server/internal/models"
)

const ReportReceivedEventType = "ReportReceived"

var ReportPublisher Publishers[*ReportReceived]

var MaxRetries = 5

type Retryable interface {
	RetryCount() int
	IncrementRetryCount()
}

type Identifiable interface {
	Retryable
	Identifier() string
	GetTransactionID() string
	Type() string
	SetIdentifier(id string)
	SetType(t string)
}

type Event struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	RetryCount int    `json:"retry_count"`
}

// ReportReceived is the queue message carrying one normalized report
// submission from the ingestion gateway to downstream persistence.
type ReportReceived struct {
	Event
	Channel       models.ReportChannel `json:"channel"`
	Content       string               `json:"content"`
	Fields        map[string]string    `json:"fields,omitempty"`
	TransactionId string               `json:"transaction_id"`
	ReceivedAt    time.Time            `json:"received_at"`
}

func (rr *ReportReceived) RetryCount() int {
	return rr.Event.RetryCount
}

func (rr *ReportReceived) IncrementRetryCount() {
	rr.Event.RetryCount++
}

func (rr *ReportReceived) Type() string {
	return rr.Event.Type
}

func (rr *ReportReceived) SetIdentifier(id string) {
	rr.ID = id
}

func (rr *ReportReceived) SetType(t string) {
	rr.Event.Type = t
}

func (rr *ReportReceived) Identifier() string {
	return rr.TransactionId + string(rr.Channel)
}

func (rr *ReportReceived) GetTransactionID() string {
	return rr.TransactionId
}

func NewReportReceivedEvent(sub models.RawReportSubmission, receivedAt time.Time) *ReportReceived {
	txID := sub.TransactionId
	if txID == "" {
		txID = uuid.NewString()
	}
	return &ReportReceived{
		Event: Event{
			Type: ReportReceivedEventType,
		},
		Channel:       sub.SourceChannel,
		Content:       sub.RawText,
		Fields:        sub.ReceivedFields,
		TransactionId: txID,
		ReceivedAt:    receivedAt,
	}
}

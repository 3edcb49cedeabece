package ingest

import (
	"encoding/json"
	"strings"

	"github.com/openews/report-server/internal/models"
)

// MtnPayload is the JSON body the MTN SMS gateway posts. Id doubles as the
// delivery receipt transaction id echoed back in the acknowledgment.
type MtnPayload struct {
	SenderAddress   string `json:"senderAddress"`
	ReceiverAddress string `json:"receiverAddress"`
	SubmittedDate   string `json:"submittedDate"`
	Message         string `json:"message"`
	Created         string `json:"created"`
	Id              string `json:"id"`
}

// MtnAck is the synchronous delivery receipt the MTN gateway expects on both
// the success and the failure path.
type MtnAck struct {
	Status        string  `json:"status"`
	TransactionId *string `json:"transactionId"`
}

const (
	MtnStatusProcessed = "Processed"
	MtnStatusError     = "Error"
)

type mtnNormalizer struct{}

// NewMtnNormalizer handles the MTN SMS gateway JSON channel. MTN
// authenticates deliveries on its own side, so no api key verification runs
// for this channel.
func NewMtnNormalizer() Normalizer {
	return mtnNormalizer{}
}

func (mtnNormalizer) Channel() models.ReportChannel {
	return models.ChannelMtnGateway
}

func (mtnNormalizer) RequiresApiKey() bool {
	return false
}

func (mtnNormalizer) Normalize(rawBody string) (models.RawReportSubmission, error) {
	body := strings.TrimSpace(rawBody)
	if body == "" {
		return models.RawReportSubmission{}, ErrEmptyBody
	}

	var p MtnPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return models.RawReportSubmission{}, ErrMalformedPayload
	}
	if p == (MtnPayload{}) {
		// parsed but yielded no object
		return models.RawReportSubmission{}, ErrMalformedPayload
	}

	fields := map[string]string{
		"senderAddress":   p.SenderAddress,
		"receiverAddress": p.ReceiverAddress,
		"submittedDate":   p.SubmittedDate,
		"created":         p.Created,
	}
	return models.RawReportSubmission{
		SourceChannel:  models.ChannelMtnGateway,
		RawText:        p.Message,
		ReceivedFields: fields,
		TransactionId:  p.Id,
	}, nil
}

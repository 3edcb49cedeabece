package ingest

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/openews/report-server/internal/models"
)

// formNormalizer handles the URL-encoded channels. The body is decoded once
// while parsing; channels differ only in their tag and the fields they carry.
type formNormalizer struct {
	channel models.ReportChannel
	fields  []string
}

func (n formNormalizer) Channel() models.ReportChannel {
	return n.channel
}

func (n formNormalizer) RequiresApiKey() bool {
	return true
}

func (n formNormalizer) Normalize(rawBody string) (models.RawReportSubmission, error) {
	body := strings.TrimSpace(rawBody)
	if body == "" {
		return models.RawReportSubmission{}, ErrEmptyBody
	}

	values, err := url.ParseQuery(body)
	if err != nil {
		return models.RawReportSubmission{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	fields := map[string]string{}
	for _, f := range n.fields {
		if v := values.Get(f); v != "" {
			fields[f] = v
		}
	}

	return models.RawReportSubmission{
		SourceChannel:  n.channel,
		RawText:        body,
		ReceivedFields: fields,
		ApiKey:         values.Get("apikey"),
	}, nil
}

// NewGenericNormalizer handles the plain webhook channel.
func NewGenericNormalizer() Normalizer {
	return formNormalizer{
		channel: models.ChannelGeneric,
		fields:  []string{"sender", "timestamp", "text", "content", "modemno"},
	}
}

// NewSmsEagleNormalizer handles reports forwarded by SMSEagle devices.
func NewSmsEagleNormalizer() Normalizer {
	return formNormalizer{
		channel: models.ChannelSmsEagle,
		fields:  []string{"sender", "timestamp", "text", "modemno", "oid"},
	}
}

// NewSmsGatewayNormalizer handles the generic SMS gateway channel.
func NewSmsGatewayNormalizer() Normalizer {
	return formNormalizer{
		channel: models.ChannelSmsGateway,
		fields:  []string{"sender", "timestamp", "text"},
	}
}

// NewTelerivetNormalizer handles Telerivet webhook posts.
func NewTelerivetNormalizer() Normalizer {
	return formNormalizer{
		channel: models.ChannelTelerivet,
		fields:  []string{"time_created", "time_updated", "content", "from_number_e164", "project_id"},
	}
}

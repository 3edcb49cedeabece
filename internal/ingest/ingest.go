package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/openews/report-server/internal/event"
	"github.com/openews/report-server/internal/keystore"
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

var (
	ErrEmptyBody        = errors.New("report body is empty")
	ErrMalformedPayload = errors.New("report payload could not be parsed")
	ErrUnauthorized     = errors.New("report api key is not authorized")
	ErrEnqueueFailed    = errors.New("failed to enqueue report")
)

// State tracks one submission through the gateway. Terminal states are
// Enqueued, Rejected and Faulted.
type State string

const (
	StateReceived      State = "Received"
	StateBodyValidated State = "BodyValidated"
	StateKeysResolved  State = "KeysResolved"
	StateAuthorized    State = "Authorized"
	StateEnqueued      State = "Enqueued"
	StateRejected      State = "Rejected"
	StateFaulted       State = "Faulted"
)

// Normalizer parses one channel's raw payload into the common submission
// shape. Implementations reject empty or unparseable bodies before the
// gateway touches the key store.
type Normalizer interface {
	Channel() models.ReportChannel
	Normalize(rawBody string) (models.RawReportSubmission, error)
	// RequiresApiKey is false for gateways that authenticate out of band.
	RequiresApiKey() bool
}

// Publisher is the slice of the queue contract the gateway needs.
type Publisher interface {
	Publish(ctx context.Context, e *event.ReportReceived) error
}

// Gateway authenticates and normalizes inbound reports, then hands them to
// the durable queue. Requests are independent; nothing is shared between them
// beyond the key store client. No retries happen here, retry policy belongs
// to the caller or the broker.
type Gateway struct {
	Keys      keystore.Store
	Publisher Publisher
	// KeysBlobPath is read per submission because the key list path rotates
	// independently of server restarts. Empty means not configured.
	KeysBlobPath func() string
}

// Submit walks one submission through the gateway state machine and returns
// the enqueued event. The error identifies the terminal failure state:
// ErrEmptyBody/ErrMalformedPayload/ErrUnauthorized are rejections
// attributable to the caller; ErrPathNotConfigured/ErrStoreRead are faults.
func (g *Gateway) Submit(ctx context.Context, n Normalizer, rawBody string) (*event.ReportReceived, error) {
	channel := string(n.Channel())
	metrics.ReportsReceivedTotal.WithLabelValues(channel).Inc()
	state := StateReceived

	sub, err := n.Normalize(rawBody)
	if err != nil {
		return nil, g.reject(channel, state, err)
	}
	state = StateBodyValidated

	if n.RequiresApiKey() {
		path := g.KeysBlobPath()
		if path == "" {
			return nil, g.fault(channel, state, keystore.ErrPathNotConfigured)
		}
		keyList, err := g.Keys.Read(ctx, path)
		if err != nil {
			return nil, g.fault(channel, state, fmt.Errorf("%w: %w", keystore.ErrStoreRead, err))
		}
		state = StateKeysResolved

		if !keystore.VerifyApiKey(keyList, sub.ApiKey) {
			return nil, g.reject(channel, state, ErrUnauthorized)
		}
	}
	state = StateAuthorized

	evt := event.NewReportReceivedEvent(sub, time.Now().UTC())
	if err := g.Publisher.Publish(ctx, evt); err != nil {
		return nil, g.fault(channel, state, fmt.Errorf("%w: %w", ErrEnqueueFailed, err))
	}

	metrics.ReportsEnqueuedTotal.WithLabelValues(channel).Inc()
	logger.Info("report enqueued", "channel", channel, "transactionId", evt.TransactionId, "state", StateEnqueued)
	return evt, nil
}

func (g *Gateway) reject(channel string, from State, err error) error {
	metrics.ReportsRejectedTotal.WithLabelValues(channel, rejectReason(err)).Inc()
	logger.Warn("report rejected", "channel", channel, "from", from, "state", StateRejected, "reason", err.Error())
	return err
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyBody):
		return "empty_body"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	}
	return "other"
}

func (g *Gateway) fault(channel string, from State, err error) error {
	metrics.ReportsFaultedTotal.WithLabelValues(channel).Inc()
	logger.Error("report submission faulted", "channel", channel, "from", from, "state", StateFaulted, "error", err.Error())
	return err
}

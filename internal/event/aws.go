package event

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/openews/report-server/internal/metrics"
	"github.com/openews/report-server/internal/models"
)

type SNSPublisher[T Identifiable] struct {
	Options  sns.Options
	TopicArn string
}

func NewSNSPublisher[T Identifiable](ctx context.Context, arn string) (*SNSPublisher[T], error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &SNSPublisher[T]{
		Options:  sns.Options{Credentials: cfg.Credentials, Region: cfg.Region},
		TopicArn: arn,
	}, nil
}

func NewSQSSubscriber[T Identifiable](ctx context.Context, queueURL string, maxMessages int32) (*SQSSubscriber[T], error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	if maxMessages <= 0 {
		maxMessages = int32(MaxMessages)
	}
	return &SQSSubscriber[T]{
		Client:   sqs.NewFromConfig(cfg),
		QueueURL: queueURL,
		Max:      maxMessages,
	}, nil
}

func (s SNSPublisher[T]) Client() *sns.Client {
	return sns.New(s.Options)
}

func (s SNSPublisher[T]) Publish(ctx context.Context, e T) error {
	c := s.Client()

	var b bytes.Buffer
	encoder := base64.NewEncoder(base64.StdEncoding, &b)
	jsonEncoder := json.NewEncoder(encoder)
	if err := jsonEncoder.Encode(e); err != nil {
		return err
	}
	encoder.Close()
	m := b.String()
	result, err := c.Publish(ctx, &sns.PublishInput{
		Message:  &m,
		TopicArn: &s.TopicArn,
	})
	slog.Info("SNS report event publish response", "response", result, "event", e)
	return err
}

func (s SNSPublisher[T]) Close() error {
	return nil
}

func (s SNSPublisher[T]) Health(_ context.Context) (rsp models.ServiceHealthResp) {
	rsp.Service = "SNS Report Publishing"
	rsp.Status = models.STATUS_UP
	rsp.HealthIssue = models.HEALTH_ISSUE_NONE
	return rsp
}

type SQSSubscriber[T Identifiable] struct {
	Client   *sqs.Client
	QueueURL string
	Max      int32
}

func (s *SQSSubscriber[T]) Listen(ctx context.Context, process func(context.Context, T) error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			resp, err := s.Client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
				QueueUrl:            aws.String(s.QueueURL),
				MaxNumberOfMessages: s.Max,
				WaitTimeSeconds:     10,
			})
			if err != nil {
				return err
			}

			for _, m := range resp.Messages {
				e, err := newEventFromSQSMessage[T](m)
				if err != nil {
					slog.Error("failed to decode report event from sqs", "messageId", aws.ToString(m.MessageId), "error", err.Error())
					continue
				}
				if err := process(ctx, e); err != nil {
					slog.Error("failed to handle report event", "messageId", aws.ToString(m.MessageId), "error", err.Error())
					continue
				}
				metrics.EventsCounter.WithLabelValues(metrics.ReportEventsQueue, "process").Inc()
				if _, err := s.Client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
					QueueUrl:      aws.String(s.QueueURL),
					ReceiptHandle: m.ReceiptHandle,
				}); err != nil {
					slog.Error("failed to ack report event", "error", err)
				}
			}
		}
	}
}

func newEventFromSQSMessage[T Identifiable](m sqstypes.Message) (T, error) {
	var e T
	body := []byte(aws.ToString(m.Body))
	if decoded, err := base64.StdEncoding.DecodeString(aws.ToString(m.Body)); err == nil {
		body = decoded
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return e, err
	}
	e.SetIdentifier(aws.ToString(m.MessageId))
	return e, nil
}

func (s *SQSSubscriber[T]) Close() error {
	return nil
}

func (s *SQSSubscriber[T]) Length(ctx context.Context) (float64, error) {
	resp, err := s.Client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(s.QueueURL),
		AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNameApproximateNumberOfMessages},
	})
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(resp.Attributes[string(sqstypes.QueueAttributeNameApproximateNumberOfMessages)])
	if err != nil {
		return 0, err
	}
	return float64(n), nil
}

func (s *SQSSubscriber[T]) Health(ctx context.Context) (rsp models.ServiceHealthResp) {
	rsp.Service = "SQS Report Subscriber"
	rsp.Status = models.STATUS_UP
	rsp.HealthIssue = models.HEALTH_ISSUE_NONE

	if _, err := s.Client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl: aws.String(s.QueueURL),
	}); err != nil {
		return rsp.BuildErrorResponse(err)
	}
	return rsp
}

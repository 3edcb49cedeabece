package cli

import (
	"context"

	"github.com/openews/report-server/internal/appconfig"
	"github.com/openews/report-server/internal/event"
	"github.com/openews/report-server/internal/health"
	"github.com/openews/report-server/internal/metrics"
)

func NewEventPublisher[T event.Identifiable](ctx context.Context, appConfig appconfig.AppConfig, defaultBus event.Publisher[T]) (event.Publishers[T], error) {
	p := event.Publishers[T]{}

	if appConfig.SNSPublisherConnection != nil {
		arn := appConfig.SNSPublisherConnection.EventArn
		snsPub, err := event.NewSNSPublisher[T](ctx, arn)
		if err != nil {
			return p, err
		}
		p = append(p, snsPub)
	}

	if appConfig.PublisherConnection != nil {
		ap, err := event.NewAzurePublisher[T](ctx, *appConfig.PublisherConnection)
		if err != nil {
			return p, err
		}
		health.Register(ap)
		p = append(p, ap)
	}

	if len(p) < 1 {
		p = append(p,
			defaultBus,
			&event.FilePublisher[T]{
				Dir: appConfig.LocalEventsFolder,
			})
	}

	return p, nil
}

func NewEventSubscriber[T event.Identifiable](ctx context.Context, appConfig appconfig.AppConfig, defaultBus event.Subscribable[T]) (event.Subscribable[T], error) {
	if appConfig.SQSSubscriberConnection != nil {
		queueURL := appConfig.SQSSubscriberConnection.QueueURL
		s, err := event.NewSQSSubscriber[T](ctx, queueURL, int32(appConfig.SQSSubscriberConnection.MaxMessages))
		if err != nil {
			return nil, err
		}
		health.Register(s)
		metrics.RegisterQueue(metrics.ReportEventsQueue, s)
		return s, nil
	}

	if appConfig.SubscriberConnection != nil {
		sub, err := event.NewAzureSubscriber[T](ctx, *appConfig.SubscriberConnection)
		if err != nil {
			return nil, err
		}
		health.Register(sub)
		return sub, nil
	}

	metrics.RegisterQueue(metrics.ReportEventsQueue, defaultBus)
	return defaultBus, nil
}

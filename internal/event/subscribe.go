package event

import (
	"context"
	"io"

	"github.com/openews/report-server/internal/health"
)

type Subscribable[T Identifiable] interface {
	health.Checkable
	io.Closer
	Listen(context.Context, func(context.Context, T) error) error
}

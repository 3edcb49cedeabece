package metrics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

func RegisterMetrics(m ...prometheus.Collector) {
	for _, c := range m {
		if err := prometheus.Register(c); err != nil {
			slog.Warn("failed to register metric", "error", err)
		}
	}
}

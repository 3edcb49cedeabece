package cli

import (
	"github.com/openews/report-server/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
) // .import

func setupMetrics(m ...prometheus.Collector) {
	metrics.RegisterMetrics(metrics.HttpReqs, metrics.OpenConnections, metrics.EventsCounter, metrics.CurrentMessages)
	metrics.RegisterMetrics(metrics.ReportsReceivedTotal, metrics.ReportsRejectedTotal, metrics.ReportsFaultedTotal, metrics.ReportsEnqueuedTotal, metrics.ReportsPersistedTotal)
	metrics.RegisterMetrics(m...)
} // setupMetrics

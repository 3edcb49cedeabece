package metrics

import "github.com/prometheus/client_golang/prometheus"

var ReportsReceivedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "ews_server_reports_received_total",
	Help: "Number of raw report submissions received, partitioned by channel.",
}, []string{"channel"})

var ReportsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "ews_server_reports_rejected_total",
	Help: "Number of report submissions rejected before enqueue, partitioned by channel and reason.",
}, []string{"channel", "reason"})

var ReportsFaultedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "ews_server_reports_faulted_total",
	Help: "Number of report submissions failed on configuration or store errors, partitioned by channel.",
}, []string{"channel"})

var ReportsEnqueuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "ews_server_reports_enqueued_total",
	Help: "Number of report submissions handed to the queue, partitioned by channel.",
}, []string{"channel"})

var ReportsPersistedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "ews_server_reports_persisted_total",
	Help: "Number of dequeued reports written to the report store, partitioned by channel.",
}, []string{"channel"})

package server

import (
	"net/http"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"

	_ "net/http/pprof"
)

// --------------------------------------------------------------------------
// Server Metrics
// --------------------------------------------------------------------------

// activeConns backs the rkv_connections_active gauge.
var activeConns atomic.Int64

var (
	connectionsAccepted = metrics.NewCounter(`rkv_connections_accepted_total`)
	commandsProcessed   = metrics.NewCounter(`rkv_commands_processed_total`)
	errorReplies        = metrics.NewCounter(`rkv_error_replies_total`)
	protocolErrors      = metrics.NewCounter(`rkv_protocol_errors_total`)

	_ = metrics.NewGauge(`rkv_connections_active`, func() float64 {
		return float64(activeConns.Load())
	})
)

// serveMetrics exposes /metrics (Prometheus text format) and the pprof
// handlers on the given endpoint. Runs until the process exits.
func serveMetrics(endpoint string) {
	http.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	logger.Infof("Serving metrics and pprof on http://%s", endpoint)
	if err := http.ListenAndServe(endpoint, nil); err != nil {
		logger.Errorf("Metrics endpoint failed: %v", err)
	}
}

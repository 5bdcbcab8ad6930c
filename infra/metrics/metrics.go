// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CommandsTotal counts commands executed by the matching worker.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kestrel",
		Name:      "commands_total",
		Help:      "Commands executed, by symbol and verb.",
	}, []string{"symbol", "verb"})

	// TradesTotal counts emitted trade reports.
	TradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kestrel",
		Name:      "trades_total",
		Help:      "Trade reports emitted, by symbol.",
	}, []string{"symbol"})

	// RejectsTotal counts orders refused at admission.
	RejectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kestrel",
		Name:      "rejects_total",
		Help:      "Orders rejected without any fill, by symbol.",
	}, []string{"symbol"})

	// FeedDropped counts trade events lost because the feed ring was full.
	FeedDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kestrel",
		Name:      "feed_dropped_total",
		Help:      "Trade feed events dropped on a full ring, by symbol.",
	}, []string{"symbol"})
)

// Serve blocks on an HTTP listener exposing /metrics.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

// Package metrics collects request metrics for the server and exposes them
// in the Prometheus text format.
// file: internal/metrics/server_metrics.go.
package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dkoosis/manifest-mcp/internal/logging"
)

// Request outcomes recorded in the status label.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Path serves the metrics.
const Path = "/metrics"

// Collector records per-method request counts and latencies. Each Collector
// owns its registry so several servers can coexist in one process.
type Collector struct {
	registry        *prometheus.Registry
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	transportErrors *prometheus.CounterVec
	inFlight        prometheus.Gauge
}

// NewMetricsCollector creates a Collector labelled with the server's name
// and version, including Go runtime and process collectors.
func NewMetricsCollector(serverName, serverVersion string) *Collector {
	constLabels := prometheus.Labels{"server": serverName, "version": serverVersion}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "manifest_mcp",
			Name:        "requests_total",
			Help:        "Total number of JSON-RPC messages handled, by method and outcome.",
			ConstLabels: constLabels,
		}, []string{"method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "manifest_mcp",
			Name:        "request_duration_seconds",
			Help:        "Time spent handling JSON-RPC messages, by method.",
			Buckets:     []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			ConstLabels: constLabels,
		}, []string{"method"}),
		transportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "manifest_mcp",
			Name:        "transport_errors_total",
			Help:        "Inbound lines rejected before dispatch, by reason.",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "manifest_mcp",
			Name:        "requests_in_flight",
			Help:        "Messages currently being handled.",
			ConstLabels: constLabels,
		}),
	}

	c.registry.MustRegister(
		c.requestTotal,
		c.requestDuration,
		c.transportErrors,
		c.inFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// RecordRequest records one handled message.
func (c *Collector) RecordRequest(method string, latency time.Duration, success bool) {
	status := StatusOK
	if !success {
		status = StatusError
	}
	c.requestTotal.WithLabelValues(method, status).Inc()
	c.requestDuration.WithLabelValues(method).Observe(latency.Seconds())
}

// RecordTransportError records a line rejected before it reached a handler
// (reason is e.g. "parse", "invalid_request", "oversized").
func (c *Collector) RecordTransportError(reason string) {
	c.transportErrors.WithLabelValues(reason).Inc()
}

// TrackInFlight marks a message as in flight until the returned func is called.
func (c *Collector) TrackInFlight() func() {
	c.inFlight.Inc()
	return c.inFlight.Dec
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collected metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Serve exposes the metrics on addr until ctx is done, then shuts the
// listener down gracefully.
func (c *Collector) Serve(ctx context.Context, addr string, logger logging.Logger) error {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}

	mux := http.NewServeMux()
	mux.Handle(Path, c.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listening for metrics on %s", addr)
	}
	logger.Info("Metrics endpoint listening.", "addr", ln.Addr().String(), "path", Path)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "metrics server failed")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutting down metrics server")
		}
		<-errCh
		return nil
	}
}

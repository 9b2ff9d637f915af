package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// MetricsTicker periodically refreshes process-level system metrics, a
// single shared implementation every service in the mesh starts.
type MetricsTicker struct {
	ctx     context.Context
	metrics *MetricsManager
	ticker  *time.Ticker
	done    chan struct{}
}

// NewMetricsTicker creates a ticker that refreshes metrics every 30s.
func NewMetricsTicker(ctx context.Context, metrics *MetricsManager) *MetricsTicker {
	return &MetricsTicker{ctx: ctx, metrics: metrics, ticker: time.NewTicker(30 * time.Second), done: make(chan struct{})}
}

// Start begins the metrics collection loop in its own goroutine.
func (m *MetricsTicker) Start() {
	go func() {
		defer m.ticker.Stop()
		for {
			select {
			case <-m.ticker.C:
				m.metrics.UpdateSystemMetrics(m.ctx)
			case <-m.ctx.Done():
				return
			case <-m.done:
				return
			}
		}
	}()
}

// Stop ends the metrics collection loop.
func (m *MetricsTicker) Stop() { close(m.done) }

// Runtime bundles the logging/tracing/metrics/health bootstrap every
// service in the mesh performs at startup, so that non-gRPC-listening
// services (every service but the broker) get the same observability
// wiring without needing a net.Listener.
type Runtime struct {
	Obs          *Observability
	Tracer       *TraceManager
	Metrics      *MetricsManager
	Health       *HealthServer
	Logger       *slog.Logger
	ticker       *MetricsTicker
	healthCancel context.CancelFunc
}

// NewRuntime initializes observability for serviceName and a health/metrics
// HTTP server listening on healthPort.
func NewRuntime(serviceName, healthPort string) (*Runtime, error) {
	obsConfig := DefaultConfig(serviceName)
	obs, err := NewObservability(obsConfig)
	if err != nil {
		return nil, fmt.Errorf("observability: initializing %s: %w", serviceName, err)
	}

	metrics, err := NewMetricsManager(obs.Meter)
	if err != nil {
		return nil, fmt.Errorf("observability: metrics manager for %s: %w", serviceName, err)
	}

	tracer := NewTraceManager(serviceName)
	health := NewHealthServer(healthPort, obsConfig.ServiceName, obsConfig.ServiceVersion)
	health.AddChecker("self", NewBasicHealthChecker("self", func(ctx context.Context) error { return nil }))

	return &Runtime{Obs: obs, Tracer: tracer, Metrics: metrics, Health: health, Logger: obs.Logger}, nil
}

// Start launches the health/metrics HTTP server and the system-metrics
// ticker, both running until ctx is cancelled.
func (r *Runtime) Start(ctx context.Context) {
	healthCtx, cancel := context.WithCancel(ctx)
	r.healthCancel = cancel
	go func() {
		r.Logger.Info("starting health server", "port", r.Health.port)
		if err := r.Health.Start(healthCtx); err != nil {
			r.Logger.Error("health server failed", "error", err)
		}
	}()

	r.ticker = NewMetricsTicker(ctx, r.Metrics)
	r.ticker.Start()
}

// Shutdown tears down the health server, metrics ticker and OpenTelemetry
// exporters.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r.ticker != nil {
		r.ticker.Stop()
	}
	if r.healthCancel != nil {
		r.healthCancel()
	}
	if err := r.Health.Shutdown(ctx); err != nil {
		r.Logger.ErrorContext(ctx, "error shutting down health server", "error", err)
	}
	return r.Obs.Shutdown(ctx)
}

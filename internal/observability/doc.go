// Package observability provides comprehensive observability infrastructure including
// distributed tracing, metrics collection, structured logging, and health checks.
//
// # Overview
//
// The observability package implements OpenTelemetry-based observability with:
//   - Distributed tracing (OpenTelemetry/Jaeger)
//   - Metrics collection (Prometheus)
//   - Structured logging (log/slog)
//   - Health check endpoints
//   - Broker routing and delivery instrumentation
//   - Graceful shutdown with trace flushing
//
// This package is the foundation for observability across the ground-station
// mesh, providing consistent tracing, metrics, and logging for the broker,
// the per-subsystem services (tracker, scheduler, mount, sdr, ...), and their
// RPC client adapters.
//
// # Quick Start
//
// Initialize observability for your service:
//
//	config := observability.DefaultConfig("tracker")
//	obs, err := observability.NewObservability(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer obs.Shutdown(context.Background())
//
//	// Use the components
//	logger := obs.Logger
//	tracer := obs.Tracer
//	meter := obs.Meter
//
// This automatically sets up:
//   - OTLP trace exporter to Jaeger
//   - Prometheus metrics exporter
//   - Structured logger with trace context
//   - Proper resource attributes (service name, version, environment)
//
// Most services skip this setup and call NewRuntime instead (see runtime.go),
// which bundles Observability with a TraceManager, MetricsManager,
// MetricsTicker and HealthServer in one call.
//
// # Architecture
//
// The package provides layered observability:
//
//	┌─────────────────────────────────────────────┐
//	│         Application Code                    │
//	│   (tracker, scheduler, mount, sdr, ...)     │
//	├─────────────────────────────────────────────┤
//	│         TraceManager                        │
//	│   - Span creation & management              │
//	│   - Task/event span attributes              │
//	│   - Context propagation                     │
//	├─────────────────────────────────────────────┤
//	│         MetricsManager                      │
//	│   - Counter metrics (events, errors)        │
//	│   - Histogram metrics (durations)           │
//	│   - Gauge metrics (goroutines, memory)      │
//	├─────────────────────────────────────────────┤
//	│         Logger (slog)                       │
//	│   - Structured logging                      │
//	│   - Trace context injection                 │
//	│   - Configurable log levels                 │
//	├─────────────────────────────────────────────┤
//	│         OpenTelemetry SDK                   │
//	│   - OTLP trace exporter → Jaeger            │
//	│   - Prometheus metrics exporter             │
//	│   - Resource detection                      │
//	└─────────────────────────────────────────────┘
//
// # Configuration
//
// **Config** specifies observability settings:
//
//	config := observability.Config{
//	    ServiceName:    "tracker",
//	    ServiceVersion: "1.0.0",
//	    JaegerEndpoint: "localhost:4317",    // OTLP gRPC endpoint
//	    PrometheusPort: "9090",
//	    Environment:    "production",
//	    LogLevel:       "INFO",              // DEBUG, INFO, WARN, ERROR
//	}
//
// **DefaultConfig** reads from environment:
//
//	config := observability.DefaultConfig("tracker")
//
// Environment variables:
//   - JAEGER_ENDPOINT: Jaeger OTLP endpoint
//   - PROMETHEUS_PORT: Port for Prometheus metrics
//   - ENVIRONMENT: Deployment environment (dev, staging, prod)
//   - LOG_LEVEL: Logging level (DEBUG, INFO, WARN, ERROR)
//
// # Distributed Tracing
//
// Use TraceManager for creating and managing spans:
//
//	traceManager := observability.NewTraceManager("tracker")
//
//	// Start a span
//	ctx, span := traceManager.StartSpan(ctx, "slew_to_aos")
//	defer span.End()
//
//	// Add attributes
//	span.SetAttributes(
//	    attribute.String("sat_id", "25544"),
//	    attribute.Int("pass_count", 5),
//	)
//
//	// Record errors
//	if err != nil {
//	    traceManager.RecordError(span, err)
//	} else {
//	    traceManager.SetSpanSuccess(span)
//	}
//
// ## Task and Event Tracing
//
// TraceManager provides specialized methods for the mesh's publish/consume/
// task-tracking operations:
//
// **Event Publishing**:
//
//	ctx, span := traceManager.StartPublishSpan(ctx, "scheduler", "collect_request")
//	defer span.End()
//
// **Event Consumption**:
//
//	ctx, span := traceManager.StartConsumeSpan(ctx, "tracker", "aos_event")
//	defer span.End()
//
// **Event Processing**:
//
//	ctx, span := traceManager.StartEventProcessingSpan(ctx, eventID, "telemetry", "tracker", "status")
//	defer span.End()
//
// **Task Attributes and Results**:
//
//	traceManager.AddTaskAttributes(span, taskID, "collect_pass", map[string]interface{}{
//	    "sat_id": "25544",
//	    "freq_hz": 437.5e6,
//	})
//	traceManager.AddTaskResult(span, "complete", map[string]interface{}{"recording_path": path}, "")
//
// ## Context Propagation
//
// Propagate trace context across service boundaries:
//
//	// Inject into headers (for HTTP/gRPC)
//	headers := make(map[string]string)
//	traceManager.InjectTraceContext(ctx, headers)
//
//	// Extract from headers
//	ctx = traceManager.ExtractTraceContext(ctx, headers)
//
// # Metrics Collection
//
// Use MetricsManager for recording metrics:
//
//	metricsManager, err := observability.NewMetricsManager(meter)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// ## Event Metrics
//
// **Processed Events**:
//
//	metricsManager.IncrementEventsProcessed(ctx, "telemetry", "tracker", true)
//
// **Event Errors**:
//
//	metricsManager.IncrementEventErrors(ctx, "command", "mount", "timeout")
//
// **Published Events**:
//
//	metricsManager.IncrementEventsPublished(ctx, "collect_request", "scheduler")
//
// **Processing Duration**:
//
//	timer := metricsManager.StartTimer()
//	// ... do work ...
//	timer(ctx, "slew_to_aos", "tracker")
//
// ## System Metrics
//
// **Runtime Metrics**:
//
//	metricsManager.UpdateSystemMetrics(ctx)
//
// This records:
//   - go_goroutines: Current goroutine count
//   - go_memstats_alloc_bytes: Allocated memory
//   - process_resident_memory_bytes: Resident memory size
//
// MetricsTicker (runtime.go) calls UpdateSystemMetrics on a 30s interval for
// every service started through Runtime, so this rarely needs to be called
// directly.
//
// ## Available Metrics
//
// The package provides these standard metrics:
//
// **Event Metrics**:
//   - events_processed_total: Counter with labels (event_type, source, success)
//   - event_processing_duration_seconds: Histogram with labels (event_type, source)
//   - event_errors_total: Counter with labels (event_type, source, error)
//   - events_published_total: Counter with labels (event_type, destination)
//
// **System Metrics**:
//   - process_cpu_seconds_total: CPU time counter
//   - process_resident_memory_bytes: Memory gauge
//   - go_goroutines: Goroutine count gauge
//   - go_memstats_alloc_bytes: Allocated memory gauge
//
// **Broker Metrics**:
//   - message_broker_publish_duration_seconds: Publish duration histogram
//   - message_broker_consume_duration_seconds: Consume duration histogram
//   - message_broker_connection_errors_total: Connection error counter
//
// All metrics are exposed on the Prometheus endpoint (default: :9090/metrics).
//
// # Structured Logging
//
// The package provides slog-based structured logging with trace context:
//
//	logger := obs.Logger
//
//	// Context-aware logging (includes trace ID if present)
//	logger.InfoContext(ctx, "slewing to AOS",
//	    "sat_id", satID,
//	    "az_deg", az,
//	)
//
//	logger.ErrorContext(ctx, "slew failed",
//	    "sat_id", satID,
//	    "error", err,
//	)
//
// ## Log Levels
//
// Configure via LogLevel in config:
//   - DEBUG: Verbose logging + stdout output
//   - INFO: Standard operation logging
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//
// DEBUG mode enables dual output (observability handler + stdout).
//
// # Health Checks
//
// The package includes health check infrastructure (see healthcheck.go):
//
//	healthServer := observability.NewHealthServer(port, serviceName, version)
//
//	// Add health checkers
//	healthServer.AddChecker("self", observability.NewBasicHealthChecker("self", func(ctx context.Context) error {
//	    return nil  // Always healthy
//	}))
//
//	healthServer.AddChecker("broker", observability.NewGRPCHealthChecker("broker", "localhost:50051"))
//
//	// Start server (exposes /health and /metrics endpoints)
//	healthServer.Start(ctx)
//
// Health endpoints:
//   - GET /health: Overall health status
//   - GET /metrics: Prometheus metrics
//
// # Complete Example
//
// Here's a full example setting up observability for a service, the way
// Runtime does it internally:
//
//	func main() {
//	    // 1. Initialize observability
//	    config := observability.DefaultConfig("tracker")
//	    obs, err := observability.NewObservability(config)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer obs.Shutdown(context.Background())
//
//	    // 2. Create managers
//	    traceManager := observability.NewTraceManager(config.ServiceName)
//	    metricsManager, err := observability.NewMetricsManager(obs.Meter)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // 3. Setup health checks
//	    healthServer := observability.NewHealthServer("8085", config.ServiceName, config.ServiceVersion)
//	    healthServer.AddChecker("self", observability.NewBasicHealthChecker("self", func(ctx context.Context) error {
//	        return nil
//	    }))
//	    go healthServer.Start(context.Background())
//
//	    // 4. Use in application
//	    ctx := context.Background()
//	    ctx, span := traceManager.StartSpan(ctx, "slew_to_aos")
//	    defer span.End()
//
//	    timer := metricsManager.StartTimer()
//	    defer timer(ctx, "slew_to_aos", "tracker")
//
//	    obs.Logger.InfoContext(ctx, "slewing to AOS", "sat_id", "25544")
//
//	    // ... do work ...
//
//	    metricsManager.IncrementEventsProcessed(ctx, "slew_to_aos", "tracker", true)
//	    traceManager.SetSpanSuccess(span)
//	}
//
// # Graceful Shutdown
//
// Always shut down observability to flush traces and metrics:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//
//	if err := obs.Shutdown(ctx); err != nil {
//	    log.Printf("Observability shutdown error: %v", err)
//	}
//
// Shutdown:
//  1. Flushes all pending traces to Jaeger
//  2. Exports final metrics to Prometheus
//  3. Closes all exporters
//  4. Releases resources
//
// Without shutdown, recent traces may be lost!
//
// # Integration with the mesh
//
// Every service bundles this package's pieces through Runtime
// (see runtime.go), one shared observability bootstrap:
//
// **In Runtime**:
//
//	rt, err := observability.NewRuntime("tracker", "8085")
//	// Automatically includes:
//	// - rt.Obs (Observability: Logger, Tracer, Meter)
//	// - rt.Tracer (TraceManager)
//	// - rt.Metrics (MetricsManager)
//	// - rt.Health (HealthServer)
//	rt.Start(ctx)
//	defer rt.Shutdown(ctx)
//
// **In internal/messagenode**: every Node accepts a *slog.Logger for its
// publish/consume/RPC logging; Publish, PublishRPC and consume create no
// spans and record no metrics.
//
// # Trace Visualization
//
// View traces in Jaeger UI:
//
//	http://localhost:16686
//
// Search by:
//   - Service name (e.g., "tracker", "broker", "scheduler")
//   - Operation name (e.g., "tracker.slew_to_aos")
//   - Tags (e.g., "sat_id=25544")
//
// Trace structure for a typical pass:
//
//	scheduler.publish_event (scheduler enqueues a collect request)
//	  └─ broker.route_event (broker routes to tracker)
//	      └─ tracker.slew_to_aos (tracker processes)
//	          └─ mountclient.set (mount is commanded)
//
// # Metrics Dashboard
//
// View metrics in Prometheus:
//
//	http://localhost:9090
//
// Example queries:
//
//	# Event processing rate
//	rate(events_processed_total[1m])
//
//	# Event error rate by type
//	rate(event_errors_total[1m])
//
//	# P95 processing duration
//	histogram_quantile(0.95, rate(event_processing_duration_seconds_bucket[5m]))
//
//	# Active goroutines
//	go_goroutines
//
// # Custom Span Attributes
//
// Add custom attributes to spans:
//
//	span.SetAttributes(
//	    attribute.String("custom.key", "value"),
//	    attribute.Int("custom.count", 42),
//	    attribute.Bool("custom.flag", true),
//	)
//
// Or use TraceManager helpers:
//
//	traceManager.AddComponentAttribute(span, "scheduler")
//	traceManager.AddSpanEvent(span, "pass_selected",
//	    attribute.String("sat_id", "25544"),
//	    attribute.String("reason", "highest_elevation"),
//	)
//
// # Error Handling
//
// Observability initialization errors:
//   - OTLP endpoint unreachable: Logged but doesn't fail startup
//   - Invalid configuration: Returns error from NewObservability()
//   - Metrics creation failure: Returns error from NewMetricsManager()
//
// Runtime errors:
//   - Trace export failures: Logged via OpenTelemetry error handler
//   - Metric recording failures: Silently ignored (non-blocking)
//
// # Performance Considerations
//
// The observability package is designed for production:
//   - Asynchronous trace export (non-blocking)
//   - Efficient span attribute storage
//   - Metric aggregation before export
//   - Minimal overhead (<1ms per span)
//   - Batch trace export to reduce network calls
//   - Sampling support (currently AlwaysSample)
//
// # Thread Safety
//
// All components are thread-safe:
//   - TraceManager can be used from multiple goroutines
//   - MetricsManager is safe for concurrent use
//   - Logger is safe for concurrent use
//   - Shutdown can be called once safely
//
// # Best Practices
//
// **Always use context**:
//
//	ctx, span := traceManager.StartSpan(ctx, "operation")
//	defer span.End()
//	// Pass ctx to child operations
//
// **End spans with defer**:
//
//	ctx, span := traceManager.StartSpan(ctx, "operation")
//	defer span.End()  // Always ends, even on panic
//
// **Record errors**:
//
//	if err != nil {
//	    traceManager.RecordError(span, err)
//	    return err
//	}
//
// **Use structured logging**:
//
//	logger.InfoContext(ctx, "Message", "key", value)  // Not: fmt.Sprintf
//
// **Shutdown gracefully**:
//
//	defer obs.Shutdown(context.Background())
//
// **Name spans consistently**:
//
//	// Good: component.operation
//	"tracker.slew_to_aos"
//	"broker.route_event"
//	"scheduler.select_pass"
//
//	// Bad: Inconsistent naming
//	"slewToAos"
//	"RouteEvent"
//	"select"
//
// # Examples
//
// See the following for complete examples:
//   - cmd/broker/main.go: Broker with full observability
//   - cmd/tracker/main.go: Service with Runtime-based observability
//   - cmd/scheduler/main.go: Orchestrating service with custom tracing
//
// # Related Packages
//
//   - internal/messagenode: Takes the *slog.Logger built here; its tests use TraceManager/MetricsManager to stand up a broker
//   - internal/broker: Uses observability for routing and subscriber delivery instrumentation
//   - internal/config: Provides configuration for observability settings
package observability

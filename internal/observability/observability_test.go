package observability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
)

func TestNewMetricsManager_RegistersEveryInstrument(t *testing.T) {
	mm, err := NewMetricsManager(otel.Meter("observability-test"))
	if err != nil {
		t.Fatalf("NewMetricsManager returned error: %v", err)
	}

	ctx := context.Background()
	mm.IncrementEventsProcessed(ctx, "telemetry", "tracker", true)
	mm.RecordEventProcessingDuration(ctx, "telemetry", "tracker", 5*time.Millisecond)
	mm.IncrementEventErrors(ctx, "telemetry", "tracker", "timeout")
	mm.IncrementEventsPublished(ctx, "telemetry", "scheduler")
	mm.UpdateSystemMetrics(ctx)
	mm.RecordBrokerPublishDuration(ctx, "observatory.tracker", time.Millisecond)
	mm.RecordBrokerConsumeDuration(ctx, "observatory.tracker", time.Millisecond)
	mm.IncrementBrokerConnectionErrors(ctx)

	stop := mm.StartTimer()
	stop(ctx, "telemetry", "tracker")
}

func TestTraceManager_StartSpanReturnsUsableSpan(t *testing.T) {
	tm := NewTraceManager("observability-test")
	ctx, span := tm.StartSpan(context.Background(), "do_thing")
	defer span.End()
	if ctx == nil {
		t.Fatal("StartSpan returned a nil context")
	}
	tm.SetSpanSuccess(span)
	tm.RecordError(span, errors.New("boom"))
	tm.AddTaskAttributes(span, "task-1", "slew", map[string]interface{}{"az": 180.0, "count": 3, "ok": true})
	tm.AddTaskResult(span, "complete", map[string]interface{}{"el": 45.0}, "")
	tm.AddSpanEvent(span, "slew_started")
	tm.AddComponentAttribute(span, "tracker")
}

func TestTraceManager_InjectExtractTraceContext(t *testing.T) {
	tm := NewTraceManager("observability-test")
	ctx, span := tm.StartSpan(context.Background(), "publish")
	defer span.End()

	headers := map[string]string{}
	tm.InjectTraceContext(ctx, headers)
	// With no SDK configured, injection is a no-op but must not panic, and
	// extraction from an empty carrier must return a valid context.
	if got := tm.ExtractTraceContext(context.Background(), headers); got == nil {
		t.Error("ExtractTraceContext returned a nil context")
	}
}

func TestBasicHealthChecker(t *testing.T) {
	healthy := NewBasicHealthChecker("self", func(ctx context.Context) error { return nil })
	check := healthy.Check(context.Background())
	if check.Status != HealthStatusHealthy {
		t.Errorf("Status = %v, want healthy", check.Status)
	}

	unhealthy := NewBasicHealthChecker("dependency", func(ctx context.Context) error { return errors.New("unreachable") })
	check = unhealthy.Check(context.Background())
	if check.Status != HealthStatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", check.Status)
	}
	if check.Message != "unreachable" {
		t.Errorf("Message = %q, want %q", check.Message, "unreachable")
	}
}

func TestHealthServer_HealthHandler_AllHealthy(t *testing.T) {
	hs := NewHealthServer("0", "observatory-test", "v1.0.0")
	hs.AddChecker("self", NewBasicHealthChecker("self", func(ctx context.Context) error { return nil }))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	hs.healthHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHealthServer_HealthHandler_UnhealthyDependency(t *testing.T) {
	hs := NewHealthServer("0", "observatory-test", "v1.0.0")
	hs.AddChecker("broker", NewBasicHealthChecker("broker", func(ctx context.Context) error { return errors.New("down") }))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	hs.healthHandler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestGRPCHealthChecker_ReportsHealthy(t *testing.T) {
	checker := NewGRPCHealthChecker("mount", "localhost:50051")
	check := checker.Check(context.Background())
	if check.Status != HealthStatusHealthy {
		t.Errorf("Status = %v, want healthy", check.Status)
	}
}

type recordingHandler struct {
	records []slog.Record
	enabled bool
}

func (h *recordingHandler) Enabled(ctx context.Context, level slog.Level) bool { return h.enabled }
func (h *recordingHandler) Handle(ctx context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(name string) slog.Handler      { return h }

func TestCombinedHandler_FansOutToEveryHandler(t *testing.T) {
	a := &recordingHandler{enabled: true}
	b := &recordingHandler{enabled: true}
	combined := &CombinedHandler{handlers: []slog.Handler{a, b}}

	logger := slog.New(combined)
	logger.Info("slewing to AOS")

	if len(a.records) != 1 || len(b.records) != 1 {
		t.Fatalf("expected both handlers to receive the record, got a=%d b=%d", len(a.records), len(b.records))
	}
}

func TestCombinedHandler_EnabledIfAnyHandlerEnabled(t *testing.T) {
	disabled := &recordingHandler{enabled: false}
	enabled := &recordingHandler{enabled: true}
	combined := &CombinedHandler{handlers: []slog.Handler{disabled, enabled}}

	if !combined.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected Enabled to be true when at least one handler is enabled")
	}

	allDisabled := &CombinedHandler{handlers: []slog.Handler{disabled}}
	if allDisabled.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected Enabled to be false when every handler is disabled")
	}
}

func TestObservabilityHandler_HandleAndShutdown(t *testing.T) {
	handler, err := NewObservabilityHandler(otel.Tracer("observability-test"), otel.Meter("observability-test"), "observatory-test")
	if err != nil {
		t.Fatalf("NewObservabilityHandler returned error: %v", err)
	}

	logger := slog.New(handler)
	logger.Info("tracking satellite", "sat_id", "25544")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := handler.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown returned error: %v", err)
	}
}

func TestMetricsTicker_StopsOnStop(t *testing.T) {
	mm, err := NewMetricsManager(otel.Meter("observability-test-ticker"))
	if err != nil {
		t.Fatalf("NewMetricsManager returned error: %v", err)
	}
	ticker := NewMetricsTicker(context.Background(), mm)
	ticker.Start()
	ticker.Stop()
}

func TestMetricsTicker_StopsOnContextCancel(t *testing.T) {
	mm, err := NewMetricsManager(otel.Meter("observability-test-ticker-ctx"))
	if err != nil {
		t.Fatalf("NewMetricsManager returned error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	ticker := NewMetricsTicker(ctx, mm)
	ticker.Start()
	cancel()
}

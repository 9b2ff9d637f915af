package broker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/je9pel/observatory/internal/observability"
)

func testService(t *testing.T) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := observability.NewTraceManager("broker-test")
	metrics, err := observability.NewMetricsManager(otel.Meter("broker-test"))
	if err != nil {
		t.Fatalf("NewMetricsManager returned error: %v", err)
	}
	return NewService(logger, tracer, metrics)
}

func envelopeRequest(t *testing.T, routingKey string, fields map[string]any) *structpb.Struct {
	t.Helper()
	env, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("building envelope struct: %v", err)
	}
	req, err := structpb.NewStruct(map[string]any{
		"routing_key": routingKey,
		"envelope":    env.AsMap(),
	})
	if err != nil {
		t.Fatalf("building request struct: %v", err)
	}
	return req
}

func TestService_DeclareExchange_RejectsEmptyName(t *testing.T) {
	svc := testService(t)
	req, _ := structpb.NewStruct(map[string]any{"name": ""})

	_, err := svc.DeclareExchange(context.Background(), req)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for an empty exchange name, got %v", err)
	}
}

func TestService_DeclareExchange_RecordsExchange(t *testing.T) {
	svc := testService(t)
	req, _ := structpb.NewStruct(map[string]any{"name": "observatory.exchange", "type": "topic", "durable": true})

	resp, err := svc.DeclareExchange(context.Background(), req)
	if err != nil {
		t.Fatalf("DeclareExchange returned error: %v", err)
	}
	if !resp.Fields["success"].GetBoolValue() {
		t.Errorf("expected success=true in response, got %v", resp)
	}
	if _, ok := svc.exchanges["observatory.exchange"]; !ok {
		t.Error("expected the exchange to be recorded")
	}
}

func TestService_Publish_RejectsEmptyRoutingKey(t *testing.T) {
	svc := testService(t)
	req := envelopeRequest(t, "", map[string]any{"kind": "telemetry"})

	_, err := svc.Publish(context.Background(), req)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for an empty routing key, got %v", err)
	}
}

func TestService_Publish_RejectsNilEnvelope(t *testing.T) {
	svc := testService(t)
	req, _ := structpb.NewStruct(map[string]any{"routing_key": "observatory.tracker.telemetry.status"})

	_, err := svc.Publish(context.Background(), req)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for a nil envelope, got %v", err)
	}
}

func TestService_Publish_NoSubscribersReportsZeroDelivered(t *testing.T) {
	svc := testService(t)
	req := envelopeRequest(t, "observatory.tracker.telemetry.status", map[string]any{"kind": "telemetry"})

	resp, err := svc.Publish(context.Background(), req)
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if resp.Fields["delivered"].GetNumberValue() != 0 {
		t.Errorf("expected delivered=0 with no subscribers, got %v", resp)
	}
}

func TestService_PublishDeliversToSubscriber(t *testing.T) {
	svc := testService(t)
	routingKey := "observatory.tracker.telemetry.status"

	subChan := make(chan *structpb.Struct, 4)
	svc.mu.Lock()
	svc.subscribers[routingKey] = append(svc.subscribers[routingKey], subChan)
	svc.mu.Unlock()

	req := envelopeRequest(t, routingKey, map[string]any{"kind": "telemetry", "payload": "x"})
	resp, err := svc.Publish(context.Background(), req)
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if resp.Fields["delivered"].GetNumberValue() != 1 {
		t.Errorf("expected delivered=1, got %v", resp)
	}

	select {
	case env := <-subChan:
		if env.Fields["kind"].GetStringValue() != "telemetry" {
			t.Errorf("delivered envelope kind = %q, want telemetry", env.Fields["kind"].GetStringValue())
		}
	case <-time.After(time.Second):
		t.Fatal("expected the envelope to be delivered to the subscriber channel")
	}
}

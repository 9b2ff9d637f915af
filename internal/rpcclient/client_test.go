package rpcclient

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/je9pel/observatory/internal/broker"
	"github.com/je9pel/observatory/internal/config"
	"github.com/je9pel/observatory/internal/envelope"
	"github.com/je9pel/observatory/internal/messagenode"
	"github.com/je9pel/observatory/internal/observability"
)

type testBroker struct {
	grpcServer *grpc.Server
	listener   *bufconn.Listener
}

func newTestBroker(t *testing.T) *testBroker {
	t.Helper()
	const bufSize = 1024 * 1024
	lis := bufconn.Listen(bufSize)
	grpcServer := grpc.NewServer()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := observability.NewTraceManager("rpcclient-test")
	metrics, err := observability.NewMetricsManager(otel.Meter("rpcclient-test"))
	if err != nil {
		t.Fatalf("NewMetricsManager returned error: %v", err)
	}
	broker.RegisterEventBusServer(grpcServer, broker.NewService(logger, tracer, metrics))

	go func() { _ = grpcServer.Serve(lis) }()
	return &testBroker{grpcServer: grpcServer, listener: lis}
}

func (tb *testBroker) dialOption() grpc.DialOption {
	return grpc.WithContextDialer(func(ctx context.Context, s string) (net.Conn, error) {
		return tb.listener.Dial()
	})
}

func (tb *testBroker) close() {
	tb.grpcServer.Stop()
	tb.listener.Close()
}

func newTestNode(t *testing.T, tb *testBroker, name string) *messagenode.Node {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	node, err := messagenode.New(config.NodeConfig{NodeName: name}, "bufnet", logger,
		tb.dialOption(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("messagenode.New returned error: %v", err)
	}
	return node
}

func TestClient_Call_RoundTrip(t *testing.T) {
	tb := newTestBroker(t)
	defer tb.close()

	caller := newTestNode(t, tb, "caller")
	defer caller.Stop()
	responder := newTestNode(t, tb, "responder")
	defer responder.Stop()

	responder.Bind("observatory.mount.command.set", func(ctx context.Context, env *envelope.Envelope) error {
		az := env.Payload.Fields["az_deg"].GetNumberValue()
		result, _ := structpb.NewStruct(map[string]any{"az_deg": az, "el_deg": env.Payload.Fields["el_deg"].GetNumberValue()})
		return responder.Reply(ctx, env, result)
	})

	client := New(caller, "mount", 2*time.Second)
	client.BindVerbs("set")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := responder.Start(ctx); err != nil {
		t.Fatalf("responder Start returned error: %v", err)
	}
	if err := caller.Start(ctx); err != nil {
		t.Fatalf("caller Start returned error: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	resp, err := client.Call(ctx, "set", map[string]any{"az_deg": 180.0, "el_deg": 30.0})
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if resp.Fields["az_deg"].GetNumberValue() != 180.0 {
		t.Errorf("az_deg = %v, want 180", resp.Fields["az_deg"].GetNumberValue())
	}
}

func TestClient_Call_PropagatesErrorField(t *testing.T) {
	tb := newTestBroker(t)
	defer tb.close()

	caller := newTestNode(t, tb, "caller")
	defer caller.Stop()
	responder := newTestNode(t, tb, "responder")
	defer responder.Stop()

	responder.Bind("observatory.mount.command.set", func(ctx context.Context, env *envelope.Envelope) error {
		result, _ := structpb.NewStruct(map[string]any{"error": "rotor jammed"})
		return responder.Reply(ctx, env, result)
	})

	client := New(caller, "mount", 2*time.Second)
	client.BindVerbs("set")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := responder.Start(ctx); err != nil {
		t.Fatalf("responder Start returned error: %v", err)
	}
	if err := caller.Start(ctx); err != nil {
		t.Fatalf("caller Start returned error: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	_, err := client.Call(ctx, "set", map[string]any{"az_deg": 180.0})
	if err == nil {
		t.Fatal("expected Call to surface the responder's error field")
	}
}

func TestClient_Notify_DeliversWithoutWaiting(t *testing.T) {
	tb := newTestBroker(t)
	defer tb.close()

	caller := newTestNode(t, tb, "caller")
	defer caller.Stop()
	responder := newTestNode(t, tb, "responder")
	defer responder.Stop()

	received := make(chan struct{}, 1)
	responder.Bind("observatory.scheduler.command.enqueue_collect_request", func(ctx context.Context, env *envelope.Envelope) error {
		received <- struct{}{}
		return nil
	})

	client := New(caller, "scheduler", 2*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := responder.Start(ctx); err != nil {
		t.Fatalf("responder Start returned error: %v", err)
	}
	if err := caller.Start(ctx); err != nil {
		t.Fatalf("caller Start returned error: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if err := client.Notify(ctx, "enqueue_collect_request", map[string]any{"sat_id": "25544"}); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the responder to receive the notification")
	}
}

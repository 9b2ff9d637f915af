package messagenode

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
	"github.com/je9pel/observatory/internal/observability"
)

// testBroker wires a real broker.Service behind an in-memory bufconn
// listener, so node-level tests exercise the actual wire protocol instead
// of a faked transport.
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
	tracer := observability.NewTraceManager("messagenode-test")
	metrics, err := observability.NewMetricsManager(otel.Meter("messagenode-test"))
	if err != nil {
		t.Fatalf("NewMetricsManager returned error: %v", err)
	}
	broker.RegisterEventBusServer(grpcServer, broker.NewService(logger, tracer, metrics))

	go func() {
		_ = grpcServer.Serve(lis)
	}()

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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestNode(t *testing.T, tb *testBroker, nodeCfg config.NodeConfig) *Node {
	t.Helper()
	node, err := New(nodeCfg, "bufnet", testLogger(), tb.dialOption(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return node
}

func TestNode_PublishAndConsume(t *testing.T) {
	tb := newTestBroker(t)
	defer tb.close()

	received := make(chan *envelope.Envelope, 1)
	node := newTestNode(t, tb, config.NodeConfig{NodeName: "test-publisher"})
	defer node.Stop()

	subscriber := newTestNode(t, tb, config.NodeConfig{NodeName: "test-subscriber"})
	defer subscriber.Stop()

	subscriber.Bind("observatory.tracker.telemetry.status", func(ctx context.Context, env *envelope.Envelope) error {
		received <- env
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := subscriber.Start(ctx); err != nil {
		t.Fatalf("subscriber Start returned error: %v", err)
	}
	if err := node.Start(ctx); err != nil {
		t.Fatalf("node Start returned error: %v", err)
	}

	// Give the subscription goroutine time to register before publishing.
	time.Sleep(50 * time.Millisecond)

	env := node.Generator().Telemetry("status", nil, "")
	if err := node.Publish(ctx, "observatory.tracker.telemetry.status", env); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	select {
	case got := <-received:
		if got.Source != "test-publisher" {
			t.Errorf("Source = %q, want test-publisher", got.Source)
		}
		if got.Kind != "status" {
			t.Errorf("Kind = %q, want status", got.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected the subscriber to receive the published envelope")
	}
}

func TestNode_PublishRPC_RoundTrip(t *testing.T) {
	tb := newTestBroker(t)
	defer tb.close()

	caller := newTestNode(t, tb, config.NodeConfig{NodeName: "caller"})
	defer caller.Stop()
	responder := newTestNode(t, tb, config.NodeConfig{NodeName: "responder"})
	defer responder.Stop()

	responder.Bind("observatory.responder.command.ping", func(ctx context.Context, env *envelope.Envelope) error {
		result, _ := structpb.NewStruct(map[string]any{"ok": true})
		return responder.Reply(ctx, env, result)
	})
	caller.Bind("observatory.responder.telemetry.ping", func(ctx context.Context, env *envelope.Envelope) error {
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := responder.Start(ctx); err != nil {
		t.Fatalf("responder Start returned error: %v", err)
	}
	if err := caller.Start(ctx); err != nil {
		t.Fatalf("caller Start returned error: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	env := caller.Generator().Command("ping", nil)
	resp, err := caller.PublishRPC(ctx, "observatory.responder.command.ping", env, 2*time.Second)
	if err != nil {
		t.Fatalf("PublishRPC returned error: %v", err)
	}
	if !resp.Fields["ok"].GetBoolValue() {
		t.Errorf("response = %v, want ok=true", resp)
	}
}

func TestNode_PublishRPC_TimesOutWithNoResponder(t *testing.T) {
	tb := newTestBroker(t)
	defer tb.close()

	caller := newTestNode(t, tb, config.NodeConfig{NodeName: "caller"})
	defer caller.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := caller.Start(ctx); err != nil {
		t.Fatalf("caller Start returned error: %v", err)
	}

	env := caller.Generator().Command("ping", nil)
	_, err := caller.PublishRPC(ctx, "observatory.nobody.command.ping", env, 20*time.Millisecond)
	if err == nil {
		t.Fatal("expected PublishRPC to time out with no responder bound")
	}
}

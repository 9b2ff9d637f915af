// Package messagenode implements the runtime every service process embeds
// to talk to the broker: it owns the gRPC connection, dispatches inbound
// envelopes to registered handlers, and exposes publish/publish-RPC
// operations to the service's own logic. It is the Go analogue of
// hamilton's AsyncMessageNode, which composes an AsyncConsumer, an
// AsyncProducer and an RPCManager behind one façade; this type plays the
// same role over a gRPC broker.EventBusClient instead of aio_pika.
package messagenode

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/je9pel/observatory/internal/broker"
	"github.com/je9pel/observatory/internal/config"
	"github.com/je9pel/observatory/internal/envelope"
	"github.com/je9pel/observatory/internal/rpcmanager"
)

// Handler processes one inbound envelope. env.CorrelationID is empty when
// the envelope carries none. An error is logged but never stops the node.
type Handler func(ctx context.Context, env *envelope.Envelope) error

// binding pairs a routing key with the handler subscribed to it, mirroring
// one entry of hamilton's MessageNodeConfig.bindings.
type binding struct {
	routingKey string
	handler    Handler
}

// Node is the messaging runtime a service process embeds. It owns exactly
// one gRPC connection to the broker and fans out every subscribed routing
// key onto its own streaming goroutine.
type Node struct {
	cfg    config.NodeConfig
	source string

	conn   *grpc.ClientConn
	client broker.EventBusClient

	rpc       *rpcmanager.Manager
	generator *envelope.Generator

	bindings []binding

	logger *slog.Logger

	wg       sync.WaitGroup
	cancelFn context.CancelFunc
}

// New creates a Node bound to nodeCfg, dialing the broker at brokerAddr.
// dialOpts carries the otelgrpc stats handler and transport credentials the
// caller wants every connection instrumented with.
func New(nodeCfg config.NodeConfig, brokerAddr string, logger *slog.Logger, dialOpts ...grpc.DialOption) (*Node, error) {
	conn, err := grpc.NewClient(brokerAddr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("messagenode: dialing broker at %s: %w", brokerAddr, err)
	}
	return &Node{
		cfg:       nodeCfg,
		source:    nodeCfg.NodeName,
		conn:      conn,
		client:    broker.NewEventBusClient(conn),
		rpc:       rpcmanager.New(),
		generator: envelope.NewGenerator(nodeCfg.NodeName),
		logger:    logger,
	}, nil
}

// Generator returns the envelope generator stamping this node's source.
func (n *Node) Generator() *envelope.Generator { return n.generator }

// Bind registers handler for every routing key the node consumes matching
// routingKey. Must be called before Start.
func (n *Node) Bind(routingKey string, handler Handler) {
	n.bindings = append(n.bindings, binding{routingKey: routingKey, handler: handler})
}

// Start declares the node's exchanges and launches one subscription
// goroutine per bound routing key.
func (n *Node) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	n.cancelFn = cancel

	for _, ex := range n.cfg.Exchanges {
		req, _ := structpb.NewStruct(map[string]any{
			"name":        ex.Name,
			"type":        ex.Type,
			"durable":     ex.Durable,
			"auto_delete": ex.AutoDelete,
		})
		if _, err := n.client.DeclareExchange(runCtx, req); err != nil {
			n.logger.ErrorContext(runCtx, "failed to declare exchange", "exchange", ex.Name, "error", err)
		}
	}

	for _, b := range n.bindings {
		n.wg.Add(1)
		go n.consume(runCtx, b)
	}

	n.logger.InfoContext(runCtx, "message node started", "node", n.cfg.NodeName, "bindings", len(n.bindings))
	return nil
}

func (n *Node) consume(ctx context.Context, b binding) {
	defer n.wg.Done()
	for {
		if ctx.Err() != nil {
			return
		}
		req, _ := structpb.NewStruct(map[string]any{"routing_key": b.routingKey})
		stream, err := n.client.Subscribe(ctx, req)
		if err != nil {
			n.logger.ErrorContext(ctx, "subscribe failed, retrying", "routing_key", b.routingKey, "error", err)
			select {
			case <-time.After(2 * time.Second):
				continue
			case <-ctx.Done():
				return
			}
		}
		for {
			msg, err := stream.Recv()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				n.logger.WarnContext(ctx, "subscription stream ended, resubscribing", "routing_key", b.routingKey, "error", err)
				break
			}
			env := envelope.FromProto(msg)
			n.rpc.HandleIncoming(env.CorrelationID, env.Payload)
			if err := b.handler(ctx, env); err != nil {
				n.logger.ErrorContext(ctx, "handler error", "routing_key", b.routingKey, "kind", env.Kind, "error", err)
			}
		}
	}
}

// LogBroadcastRoute is the shared routing key every envelope is mirrored
// onto in addition to its own route, mirroring hamilton's single shared
// logging queue that every MessageHandler.ALL subscriber (in practice, just
// the log collector) drains.
const LogBroadcastRoute = "observatory.logs.all"

// Publish sends env to routingKey without waiting for any response, and
// mirrors it onto LogBroadcastRoute for the log collector.
func (n *Node) Publish(ctx context.Context, routingKey string, env *envelope.Envelope) error {
	if err := n.publishTo(ctx, routingKey, env); err != nil {
		return err
	}
	if routingKey != LogBroadcastRoute {
		if err := n.publishTo(ctx, LogBroadcastRoute, env); err != nil {
			n.logger.WarnContext(ctx, "failed to mirror envelope to log broadcast route", "routing_key", routingKey, "error", err)
		}
	}
	return nil
}

func (n *Node) publishTo(ctx context.Context, routingKey string, env *envelope.Envelope) error {
	exchange := n.exchangeFor(routingKey)
	req, _ := structpb.NewStruct(map[string]any{
		"routing_key": routingKey,
		"exchange":    exchange,
	})
	req.Fields["envelope"] = structpb.NewStructValue(env.ToProto())
	_, err := n.client.Publish(ctx, req)
	return err
}

// PublishRPC sends env to routingKey, stamping it with a fresh correlation
// id, and blocks until a matching response arrives or timeout elapses.
func (n *Node) PublishRPC(ctx context.Context, routingKey string, env *envelope.Envelope, timeout time.Duration) (*structpb.Struct, error) {
	corrID := uuid.NewString()
	env.CorrelationID = corrID

	ch, err := n.rpc.CreateFuture(corrID)
	if err != nil {
		return nil, err
	}

	if err := n.Publish(ctx, routingKey, env); err != nil {
		n.rpc.Cleanup(corrID)
		return nil, fmt.Errorf("messagenode: publishing rpc message: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return n.rpc.Wait(waitCtx, corrID, ch)
}

// Reply publishes result on this node's telemetry route matching the
// command it answers (observatory.<service>.telemetry.<verb>), stamped with
// the request's correlation id, per the mesh convention that every RPC
// command is answered by a telemetry message on the matching route rather
// than a private reply queue.
func (n *Node) Reply(ctx context.Context, request *envelope.Envelope, result *structpb.Struct) error {
	if request.CorrelationID == "" {
		return nil
	}
	resp := n.generator.Telemetry(request.Kind, result, request.CorrelationID)
	routingKey := fmt.Sprintf("observatory.%s.telemetry.%s", n.source, request.Kind)
	return n.Publish(ctx, routingKey, resp)
}

// ReplyError publishes an error response to the envelope that requested it.
func (n *Node) ReplyError(ctx context.Context, request *envelope.Envelope, err error) error {
	payload, _ := structpb.NewStruct(map[string]any{"error": err.Error()})
	return n.Reply(ctx, request, payload)
}

func (n *Node) exchangeFor(routingKey string) string {
	for _, p := range n.cfg.Publishings {
		if p.RoutingKey == routingKey {
			return p.Exchange
		}
	}
	if len(n.cfg.Exchanges) > 0 {
		return n.cfg.Exchanges[0].Name
	}
	return ""
}

// Stop cancels every subscription goroutine, waits for them to exit, and
// closes the broker connection.
func (n *Node) Stop() error {
	if n.cancelFn != nil {
		n.cancelFn()
	}
	n.wg.Wait()
	n.logger.Info("message node stopped", "node", n.cfg.NodeName)
	return n.conn.Close()
}

// Command orchestrator runs the orchestrator service: sequences one task
// end-to-end (slew home, slew to AOS, track and record through the pass,
// slew home, post-process), driving the tracker, sdr and signal_processor
// services over RPC and publishing its own active/idle status telemetry.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/je9pel/observatory/internal/config"
	"github.com/je9pel/observatory/internal/envelope"
	"github.com/je9pel/observatory/internal/messagenode"
	"github.com/je9pel/observatory/internal/observability"
	"github.com/je9pel/observatory/internal/orchestrator"
	"github.com/je9pel/observatory/internal/rpcclient"
	"github.com/je9pel/observatory/internal/sdrclient"
	"github.com/je9pel/observatory/internal/signalprocessorclient"
	"github.com/je9pel/observatory/internal/taskwire"
	"github.com/je9pel/observatory/internal/trackerclient"
)

const serviceName = "orchestrator"

func commandRoute(verb string) string {
	return fmt.Sprintf("observatory.%s.command.%s", serviceName, verb)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	rt, err := observability.NewRuntime(serviceName, cfg.GetHealthPort(serviceName))
	if err != nil {
		return fmt.Errorf("%s: initializing observability: %w", serviceName, err)
	}
	rt.Start(ctx)
	defer rt.Shutdown(context.Background())

	exchange := "observatory." + serviceName
	nodeCfg := config.NodeConfig{
		NodeName: serviceName,
		Exchanges: []config.Exchange{
			{Name: exchange, Type: "topic", Durable: true},
			{Name: "observatory.tracker", Type: "topic", Durable: true},
			{Name: "observatory.sdr", Type: "topic", Durable: true},
			{Name: "observatory.signal_processor", Type: "topic", Durable: true},
		},
		Bindings: []config.Binding{
			{Exchange: exchange, RoutingKey: commandRoute("orchestrate")},
			{Exchange: exchange, RoutingKey: commandRoute("stop_orchestrating")},
			{Exchange: exchange, RoutingKey: commandRoute("status")},
		},
	}

	node, err := messagenode.New(nodeCfg, cfg.GetBrokerAddress(), rt.Logger,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()))
	if err != nil {
		return fmt.Errorf("%s: creating message node: %w", serviceName, err)
	}

	trackerRPC := rpcclient.New(node, "tracker", cfg.DefaultRPCTimeout)
	trackerRPC.BindVerbs(trackerclient.Verbs()...)
	trackerDriver := trackerclient.New(trackerRPC)

	sdrRPC := rpcclient.New(node, "sdr", cfg.DefaultRPCTimeout)
	sdrRPC.BindVerbs(sdrclient.Verbs()...)
	recorder := sdrclient.New(sdrRPC)

	signalRPC := rpcclient.New(node, "signal_processor", cfg.DefaultRPCTimeout)
	signalRPC.BindVerbs(signalprocessorclient.Verbs()...)
	processor := signalprocessorclient.New(signalRPC)

	statusPublisher := &telemetryStatusPublisher{node: node}
	svc := orchestrator.New(trackerDriver, recorder, processor, statusPublisher, rt.Logger)

	node.Bind(commandRoute("orchestrate"), func(ctx context.Context, env *envelope.Envelope) error {
		if svc.IsRunning() {
			return node.ReplyError(ctx, env, fmt.Errorf("orchestrator: an orchestration is already running"))
		}
		t := taskwire.FromStruct(env.Payload)
		go func() {
			runCtx := context.Background()
			if err := svc.Orchestrate(runCtx, t); err != nil {
				rt.Logger.ErrorContext(runCtx, "orchestration failed", "task_id", t.TaskID, "error", err)
			}
		}()
		ok, _ := structpb.NewStruct(map[string]any{"success": true})
		return node.Reply(ctx, env, ok)
	})

	node.Bind(commandRoute("stop_orchestrating"), func(ctx context.Context, env *envelope.Envelope) error {
		svc.StopOrchestrating(ctx)
		ok, _ := structpb.NewStruct(map[string]any{"success": true})
		return node.Reply(ctx, env, ok)
	})

	node.Bind(commandRoute("status"), func(ctx context.Context, env *envelope.Envelope) error {
		payload, _ := structpb.NewStruct(map[string]any{"status": svc.Status()})
		return node.Reply(ctx, env, payload)
	})

	if err := node.Start(ctx); err != nil {
		return fmt.Errorf("%s: starting message node: %w", serviceName, err)
	}

	rt.Logger.Info(serviceName + " service started")
	<-ctx.Done()
	rt.Logger.Info(serviceName + " received shutdown signal")
	return node.Stop()
}

// telemetryStatusPublisher satisfies orchestrator.StatusPublisher by
// publishing a telemetry envelope on this node's own status route, so that
// anything bound to observatory.orchestrator.telemetry.status (the
// scheduler, observatoryctl) observes every active/idle transition.
type telemetryStatusPublisher struct {
	node *messagenode.Node
}

func (p *telemetryStatusPublisher) PublishStatusEvent(ctx context.Context, status string) error {
	payload, _ := structpb.NewStruct(map[string]any{"status": status})
	env := p.node.Generator().Telemetry("status", payload, "")
	routingKey := fmt.Sprintf("observatory.%s.telemetry.status", serviceName)
	return p.node.Publish(ctx, routingKey, env)
}

// Command scheduler runs the scheduler service: maintains the time-ordered
// pass queue, refreshes it against astrodynamics and radiometrics, and
// dispatches each task to the orchestrator at the right time, driving all
// three over RPC.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/je9pel/observatory/internal/astrodynamicsclient"
	"github.com/je9pel/observatory/internal/config"
	"github.com/je9pel/observatory/internal/databaseclient"
	"github.com/je9pel/observatory/internal/envelope"
	"github.com/je9pel/observatory/internal/messagenode"
	"github.com/je9pel/observatory/internal/observability"
	"github.com/je9pel/observatory/internal/orchestratorclient"
	"github.com/je9pel/observatory/internal/radiometricsclient"
	"github.com/je9pel/observatory/internal/rpcclient"
	"github.com/je9pel/observatory/internal/scheduler"
	"github.com/je9pel/observatory/internal/task"
	"github.com/je9pel/observatory/internal/taskwire"
)

const serviceName = "scheduler"

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
			{Name: "observatory.astrodynamics", Type: "topic", Durable: true},
			{Name: "observatory.radiometrics", Type: "topic", Durable: true},
			{Name: "observatory.orchestrator", Type: "topic", Durable: true},
			{Name: "observatory.database", Type: "topic", Durable: true},
		},
		Bindings: []config.Binding{
			{Exchange: exchange, RoutingKey: commandRoute("set_mode")},
			{Exchange: exchange, RoutingKey: commandRoute("stop_scheduling")},
			{Exchange: exchange, RoutingKey: commandRoute("status")},
			{Exchange: exchange, RoutingKey: commandRoute("enqueue_collect_request")},
		},
	}

	node, err := messagenode.New(nodeCfg, cfg.GetBrokerAddress(), rt.Logger,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()))
	if err != nil {
		return fmt.Errorf("%s: creating message node: %w", serviceName, err)
	}

	astroRPC := rpcclient.New(node, "astrodynamics", cfg.DefaultRPCTimeout)
	astroRPC.BindVerbs(astrodynamicsclient.Verbs()...)
	astroLookup := astrodynamicsclient.New(astroRPC)

	radioRPC := rpcclient.New(node, "radiometrics", cfg.DefaultRPCTimeout)
	radioRPC.BindVerbs(radiometricsclient.Verbs()...)
	radioLookup := radiometricsclient.New(radioRPC)

	orchRPC := rpcclient.New(node, "orchestrator", cfg.DefaultRPCTimeout)
	orchRPC.BindVerbs(orchestratorclient.Verbs()...)
	orchestratorDriver := orchestratorclient.New(orchRPC)

	dbRPC := rpcclient.New(node, "database", cfg.DefaultRPCTimeout)
	dbRPC.BindVerbs(databaseclient.Verbs()...)
	targetSource := databaseclient.New(dbRPC)

	generator := task.NewGenerator(serviceName, astroLookup, radioLookup, cfg.MaxPassDuration)

	sched := scheduler.New(scheduler.Config{
		RefreshInterval: cfg.RefreshInterval,
		DispatchBuffer:  cfg.DispatchBuffer,
	}, generator, orchestratorDriver, targetSource, rt.Logger)

	node.Bind(commandRoute("set_mode"), func(ctx context.Context, env *envelope.Envelope) error {
		mode, err := parseMode(env.Payload.Fields["mode"].GetStringValue())
		if err != nil {
			return node.ReplyError(ctx, env, err)
		}
		sched.SetMode(ctx, mode)
		ok, _ := structpb.NewStruct(map[string]any{"success": true})
		return node.Reply(ctx, env, ok)
	})

	node.Bind(commandRoute("stop_scheduling"), func(ctx context.Context, env *envelope.Envelope) error {
		sched.SetMode(ctx, scheduler.ModeInactive)
		ok, _ := structpb.NewStruct(map[string]any{"success": true})
		return node.Reply(ctx, env, ok)
	})

	node.Bind(commandRoute("status"), func(ctx context.Context, env *envelope.Envelope) error {
		status := sched.Status()
		payload, _ := structpb.NewStruct(map[string]any{
			"mode":         status.Mode.String(),
			"targets":      stringsToAny(status.Targets),
			"queued_tasks": stringsToAny(status.QueuedTasks),
		})
		return node.Reply(ctx, env, payload)
	})

	node.Bind(commandRoute("enqueue_collect_request"), func(ctx context.Context, env *envelope.Envelope) error {
		t := taskwire.FromStruct(env.Payload)
		sched.EnqueueTask(t)
		ok, _ := structpb.NewStruct(map[string]any{"success": true})
		return node.Reply(ctx, env, ok)
	})

	if err := node.Start(ctx); err != nil {
		return fmt.Errorf("%s: starting message node: %w", serviceName, err)
	}

	go func() {
		if err := sched.Run(ctx); err != nil {
			rt.Logger.ErrorContext(ctx, "scheduling loop exited with error", "error", err)
		}
	}()

	rt.Logger.Info(serviceName + " service started")
	<-ctx.Done()
	rt.Logger.Info(serviceName + " received shutdown signal")
	return node.Stop()
}

func parseMode(s string) (scheduler.Mode, error) {
	switch strings.ToLower(s) {
	case "survey":
		return scheduler.ModeSurvey, nil
	case "standby":
		return scheduler.ModeStandby, nil
	case "inactive":
		return scheduler.ModeInactive, nil
	case "collect_request":
		return scheduler.ModeCollectRequest, nil
	default:
		return scheduler.ModeInactive, fmt.Errorf("scheduler: unknown mode %q", s)
	}
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

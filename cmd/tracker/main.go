// Command tracker runs the tracker service: pre-positions the rotator for
// AOS and continuously re-points it to a satellite's live kinematic state
// until LOS or cancellation, driving the mount and astrodynamics services
// over RPC.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/je9pel/observatory/internal/astrodynamicsclient"
	"github.com/je9pel/observatory/internal/config"
	"github.com/je9pel/observatory/internal/envelope"
	"github.com/je9pel/observatory/internal/messagenode"
	"github.com/je9pel/observatory/internal/mountclient"
	"github.com/je9pel/observatory/internal/observability"
	"github.com/je9pel/observatory/internal/rpcclient"
	"github.com/je9pel/observatory/internal/taskwire"
	"github.com/je9pel/observatory/internal/tracker"
)

const serviceName = "tracker"

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
			{Name: "observatory.mount", Type: "topic", Durable: true},
			{Name: "observatory.astrodynamics", Type: "topic", Durable: true},
		},
		Bindings: []config.Binding{
			{Exchange: exchange, RoutingKey: commandRoute("start_tracking")},
			{Exchange: exchange, RoutingKey: commandRoute("stop_tracking")},
			{Exchange: exchange, RoutingKey: commandRoute("slew_to_home")},
			{Exchange: exchange, RoutingKey: commandRoute("slew_to_aos")},
			{Exchange: exchange, RoutingKey: commandRoute("status")},
		},
	}

	node, err := messagenode.New(nodeCfg, cfg.GetBrokerAddress(), rt.Logger,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()))
	if err != nil {
		return fmt.Errorf("%s: creating message node: %w", serviceName, err)
	}

	mountRPC := rpcclient.New(node, "mount", cfg.DefaultRPCTimeout)
	mountRPC.BindVerbs(mountclient.Verbs()...)
	mountDriver := mountclient.New(mountRPC)

	astroRPC := rpcclient.New(node, "astrodynamics", cfg.DefaultRPCTimeout)
	astroRPC.BindVerbs(astrodynamicsclient.Verbs()...)
	kinematicSource := astrodynamicsclient.New(astroRPC)

	svc := tracker.New(tracker.Config{
		AzHome:           270, // rotator home position, matching SimulatedDriver's start position
		ElHome:           0,
		MinElevationDeg:  cfg.MinElevationDeg,
		SlewPollInterval: cfg.SlewPollInterval,
		AngularTolerance: cfg.AngularTolerance,
	}, mountDriver, kinematicSource, rt.Logger)

	var trackCancel atomic.Pointer[context.CancelFunc]

	node.Bind(commandRoute("slew_to_home"), func(ctx context.Context, env *envelope.Envelope) error {
		if err := svc.SlewToHome(ctx); err != nil {
			return node.ReplyError(ctx, env, err)
		}
		ok, _ := structpb.NewStruct(map[string]any{"success": true})
		return node.Reply(ctx, env, ok)
	})

	node.Bind(commandRoute("slew_to_aos"), func(ctx context.Context, env *envelope.Envelope) error {
		t := taskwire.FromStruct(env.Payload)
		if err := svc.SetupTask(t); err != nil {
			return node.ReplyError(ctx, env, err)
		}
		if err := svc.SlewToAos(ctx); err != nil {
			return node.ReplyError(ctx, env, err)
		}
		ok, _ := structpb.NewStruct(map[string]any{"success": true})
		return node.Reply(ctx, env, ok)
	})

	node.Bind(commandRoute("start_tracking"), func(ctx context.Context, env *envelope.Envelope) error {
		t := taskwire.FromStruct(env.Payload)
		if err := svc.SetupTask(t); err != nil {
			return node.ReplyError(ctx, env, err)
		}

		trackCtx, cancel := context.WithCancel(context.Background())
		trackCancel.Store(&cancel)
		go func() {
			if err := svc.Track(trackCtx); err != nil {
				rt.Logger.ErrorContext(trackCtx, "tracking loop exited with error", "error", err)
			}
		}()

		ok, _ := structpb.NewStruct(map[string]any{"success": true})
		return node.Reply(ctx, env, ok)
	})

	node.Bind(commandRoute("stop_tracking"), func(ctx context.Context, env *envelope.Envelope) error {
		if c := trackCancel.Load(); c != nil {
			(*c)()
			trackCancel.Store(nil)
		}
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

// Command mount runs the mount service: the rotator command surface every
// tracker slew request drives, backed by a simulated rotator driver.
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
	"github.com/je9pel/observatory/internal/mount"
	"github.com/je9pel/observatory/internal/observability"
)

const serviceName = "mount"

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
		},
		Bindings: []config.Binding{
			{Exchange: exchange, RoutingKey: commandRoute("set")},
			{Exchange: exchange, RoutingKey: commandRoute("status")},
			{Exchange: exchange, RoutingKey: commandRoute("stop")},
		},
	}

	node, err := messagenode.New(nodeCfg, cfg.GetBrokerAddress(), rt.Logger,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()))
	if err != nil {
		return fmt.Errorf("%s: creating message node: %w", serviceName, err)
	}

	svc := mount.NewService(mount.NewSimulatedDriver(4.0))

	node.Bind(commandRoute("set"), func(ctx context.Context, env *envelope.Envelope) error {
		az := env.Payload.Fields["az"].GetNumberValue()
		el := env.Payload.Fields["el"].GetNumberValue()
		if err := svc.Set(ctx, az, el); err != nil {
			return node.ReplyError(ctx, env, err)
		}
		ok, _ := structpb.NewStruct(map[string]any{"success": true})
		return node.Reply(ctx, env, ok)
	})

	node.Bind(commandRoute("status"), func(ctx context.Context, env *envelope.Envelope) error {
		pos, err := svc.Status(ctx)
		if err != nil {
			return node.ReplyError(ctx, env, err)
		}
		payload, _ := structpb.NewStruct(map[string]any{"az": pos.Azimuth, "el": pos.Elevation})
		return node.Reply(ctx, env, payload)
	})

	node.Bind(commandRoute("stop"), func(ctx context.Context, env *envelope.Envelope) error {
		pos, err := svc.StopRotor(ctx)
		if err != nil {
			return node.ReplyError(ctx, env, err)
		}
		payload, _ := structpb.NewStruct(map[string]any{"az": pos.Azimuth, "el": pos.Elevation})
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

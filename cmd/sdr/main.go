// Command sdr runs the SDR service: parameterizes and starts/stops the
// satellite-pass recording, backed by a simulated recorder.
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

	"github.com/je9pel/observatory/internal/config"
	"github.com/je9pel/observatory/internal/envelope"
	"github.com/je9pel/observatory/internal/messagenode"
	"github.com/je9pel/observatory/internal/observability"
	"github.com/je9pel/observatory/internal/sdr"
)

const serviceName = "sdr"

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
			{Exchange: exchange, RoutingKey: commandRoute("start_record")},
			{Exchange: exchange, RoutingKey: commandRoute("stop_record")},
			{Exchange: exchange, RoutingKey: commandRoute("status")},
		},
	}

	node, err := messagenode.New(nodeCfg, cfg.GetBrokerAddress(), rt.Logger,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()))
	if err != nil {
		return fmt.Errorf("%s: creating message node: %w", serviceName, err)
	}

	svc := sdr.NewService(sdr.NewSimulatedRecorder(cfg.ObservationsDir))
	var recording atomic.Bool

	node.Bind(commandRoute("start_record"), func(ctx context.Context, env *envelope.Envelope) error {
		params := sdr.Parameters{
			SatID:      env.Payload.Fields["sat_id"].GetStringValue(),
			FreqHz:     env.Payload.Fields["freq_hz"].GetNumberValue(),
			SampleRate: env.Payload.Fields["sample_rate"].GetNumberValue(),
			RxGainDb:   env.Payload.Fields["rx_gain_db"].GetNumberValue(),
		}
		path, err := svc.StartRecording(ctx, params)
		if err != nil {
			return node.ReplyError(ctx, env, err)
		}
		recording.Store(true)
		payload, _ := structpb.NewStruct(map[string]any{"file_path": path})
		return node.Reply(ctx, env, payload)
	})

	node.Bind(commandRoute("stop_record"), func(ctx context.Context, env *envelope.Envelope) error {
		if err := svc.StopRecording(ctx); err != nil {
			return node.ReplyError(ctx, env, err)
		}
		recording.Store(false)
		ok, _ := structpb.NewStruct(map[string]any{"success": true})
		return node.Reply(ctx, env, ok)
	})

	node.Bind(commandRoute("status"), func(ctx context.Context, env *envelope.Envelope) error {
		payload, _ := structpb.NewStruct(map[string]any{"recording": recording.Load()})
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

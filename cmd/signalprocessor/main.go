// Command signalprocessor runs the signal-processor service: writes the
// post-pass PSD, spectrogram and combined-panel artefacts for a completed
// recording.
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
	"github.com/je9pel/observatory/internal/signalprocessor"
)

const serviceName = "signal_processor"

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
			{Exchange: exchange, RoutingKey: commandRoute("generate_psds")},
			{Exchange: exchange, RoutingKey: commandRoute("generate_spectrograms")},
		},
	}

	node, err := messagenode.New(nodeCfg, cfg.GetBrokerAddress(), rt.Logger,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()))
	if err != nil {
		return fmt.Errorf("%s: creating message node: %w", serviceName, err)
	}

	processor, err := signalprocessor.New(cfg.ObservationsDir)
	if err != nil {
		return fmt.Errorf("%s: initializing processor: %w", serviceName, err)
	}

	node.Bind(commandRoute("generate_psds"), func(ctx context.Context, env *envelope.Envelope) error {
		base := env.Payload.Fields["sigmf_base_name"].GetStringValue()
		artefacts, err := processor.Process(ctx, base)
		if err != nil {
			return node.ReplyError(ctx, env, err)
		}
		payload, _ := structpb.NewStruct(map[string]any{"psd_path": artefacts.PSDPath})
		return node.Reply(ctx, env, payload)
	})

	node.Bind(commandRoute("generate_spectrograms"), func(ctx context.Context, env *envelope.Envelope) error {
		base := env.Payload.Fields["sigmf_base_name"].GetStringValue()
		artefacts, err := processor.Process(ctx, base)
		if err != nil {
			return node.ReplyError(ctx, env, err)
		}
		payload, _ := structpb.NewStruct(map[string]any{
			"spectrogram_path": artefacts.SpectrogramPath,
			"panel_path":       artefacts.PanelPath,
		})
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

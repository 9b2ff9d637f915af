// Command radiometrics runs the radiometrics service: derives ranked
// downlink frequency candidates for a catalog satellite, calling the
// database service over RPC for the underlying catalog record.
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
	"github.com/je9pel/observatory/internal/databaseclient"
	"github.com/je9pel/observatory/internal/envelope"
	"github.com/je9pel/observatory/internal/messagenode"
	"github.com/je9pel/observatory/internal/observability"
	"github.com/je9pel/observatory/internal/radiometrics"
	"github.com/je9pel/observatory/internal/rpcclient"
)

const serviceName = "radiometrics"

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
			{Name: "observatory.database", Type: "topic", Durable: true},
		},
		Bindings: []config.Binding{
			{Exchange: exchange, RoutingKey: commandRoute("get_downlink_freqs")},
		},
	}

	node, err := messagenode.New(nodeCfg, cfg.GetBrokerAddress(), rt.Logger,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()))
	if err != nil {
		return fmt.Errorf("%s: creating message node: %w", serviceName, err)
	}

	dbRPC := rpcclient.New(node, "database", cfg.DefaultRPCTimeout)
	dbRPC.BindVerbs(databaseclient.Verbs()...)
	store := databaseclient.New(dbRPC)

	svc := radiometrics.New(store)

	node.Bind(commandRoute("get_downlink_freqs"), func(ctx context.Context, env *envelope.Envelope) error {
		satID := env.Payload.Fields["sat_id"].GetStringValue()
		freqs, err := svc.GetDownlinkFreqs(ctx, satID)
		if err != nil {
			return node.ReplyError(ctx, env, err)
		}
		out := make([]any, len(freqs))
		for i, f := range freqs {
			out[i] = f
		}
		payload, _ := structpb.NewStruct(map[string]any{"downlink_freqs": out})
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

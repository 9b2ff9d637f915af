// Command hxmadapter runs the hxm-adapter service: polls the external HXM
// collect-request endpoint, translates each request into a task via the
// astrodynamics and radiometrics services, and enqueues it with the
// scheduler over RPC.
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

	"github.com/je9pel/observatory/internal/astrodynamicsclient"
	"github.com/je9pel/observatory/internal/config"
	"github.com/je9pel/observatory/internal/hxmadapter"
	"github.com/je9pel/observatory/internal/messagenode"
	"github.com/je9pel/observatory/internal/observability"
	"github.com/je9pel/observatory/internal/radiometricsclient"
	"github.com/je9pel/observatory/internal/rpcclient"
	"github.com/je9pel/observatory/internal/schedulerclient"
	"github.com/je9pel/observatory/internal/task"
)

const serviceName = "hxm_adapter"

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
			{Name: "observatory.scheduler", Type: "topic", Durable: true},
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

	schedRPC := rpcclient.New(node, "scheduler", cfg.DefaultRPCTimeout)
	schedRPC.BindVerbs(schedulerclient.Verbs()...)
	schedulerDriver := schedulerclient.New(schedRPC)

	generator := task.NewGenerator(serviceName, astroLookup, radioLookup, cfg.MaxPassDuration)

	adapter := hxmadapter.New(hxmadapter.Config{
		BaseURL:      cfg.HXMBaseURL,
		PollInterval: cfg.HXMPollInterval,
	}, generator, schedulerDriver, rt.Logger)

	if err := node.Start(ctx); err != nil {
		return fmt.Errorf("%s: starting message node: %w", serviceName, err)
	}

	go func() {
		if err := adapter.Run(ctx); err != nil {
			rt.Logger.ErrorContext(ctx, "hxm adapter poll loop exited with error", "error", err)
		}
	}()

	rt.Logger.Info(serviceName + " service started")
	<-ctx.Done()
	rt.Logger.Info(serviceName + " received shutdown signal")
	return node.Stop()
}

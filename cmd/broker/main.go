// Command broker runs the mesh's EventBus server: every other service
// dials this process to publish and subscribe to envelopes by routing key.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/je9pel/observatory/internal/broker"
	"github.com/je9pel/observatory/internal/config"
	"github.com/je9pel/observatory/internal/observability"
)

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

	rt, err := observability.NewRuntime("broker", cfg.GetHealthPort("broker"))
	if err != nil {
		return fmt.Errorf("broker: initializing observability: %w", err)
	}
	rt.Start(ctx)

	lis, err := net.Listen("tcp", cfg.GetBrokerAddress())
	if err != nil {
		return fmt.Errorf("broker: listening on %s: %w", cfg.GetBrokerAddress(), err)
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	svc := broker.NewService(rt.Logger, rt.Tracer, rt.Metrics)
	broker.RegisterEventBusServer(grpcServer, svc)

	go func() {
		<-ctx.Done()
		rt.Logger.Info("broker received shutdown signal")
		grpcServer.GracefulStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rt.Shutdown(shutdownCtx); err != nil {
			rt.Logger.Error("error shutting down observability runtime", "error", err)
		}
	}()

	rt.Logger.Info("broker listening", "address", lis.Addr().String())
	return grpcServer.Serve(lis)
}

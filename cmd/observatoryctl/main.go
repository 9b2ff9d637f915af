// Command observatoryctl is a one-shot operator CLI: it issues a single
// RPC command against any mesh service and prints the response as JSON.
// Usage: observatoryctl <service> <verb> [key=value ...]
//
// No command-line parsing library is warranted for a single two-token
// command line, so this tool's trivial positional-argument parsing stays
// on the standard flag package rather than adopting an unrelated
// dependency.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/je9pel/observatory/internal/config"
	"github.com/je9pel/observatory/internal/messagenode"
	"github.com/je9pel/observatory/internal/rpcclient"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "observatoryctl:", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: observatoryctl <service> <verb> [key=value ...]")
	}
	flag.Parse()
	args := flag.Args()
	if len(args) < 2 {
		flag.Usage()
		return fmt.Errorf("expected at least a service and a verb")
	}
	service, verb, params := args[0], args[1], args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	nodeCfg := config.NodeConfig{NodeName: "observatoryctl"}
	node, err := messagenode.New(nodeCfg, cfg.GetBrokerAddress(), logger,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()))
	if err != nil {
		return fmt.Errorf("creating message node: %w", err)
	}
	defer node.Stop()

	client := rpcclient.New(node, service, cfg.DefaultRPCTimeout)
	client.BindVerbs(verb)

	if err := node.Start(ctx); err != nil {
		return fmt.Errorf("starting message node: %w", err)
	}

	parameters, err := parseParams(params)
	if err != nil {
		return fmt.Errorf("parsing parameters: %w", err)
	}

	resp, err := client.Call(ctx, verb, parameters)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp.AsMap(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// parseParams turns "key=value" tokens into a structpb-compatible
// parameter bag, inferring bool and number types where the value parses
// cleanly and falling back to string otherwise.
func parseParams(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("parameter %q is not in key=value form", arg)
		}
		out[key] = inferValue(value)
	}
	return out, nil
}

func inferValue(s string) any {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

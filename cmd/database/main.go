// Command database runs the catalog (database) service: the sole owner of
// the satellite catalog store, answering keyed lookups and active-downlink
// filters for every other service over RPC.
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

	"github.com/je9pel/observatory/internal/catalog"
	"github.com/je9pel/observatory/internal/config"
	"github.com/je9pel/observatory/internal/envelope"
	"github.com/je9pel/observatory/internal/messagenode"
	"github.com/je9pel/observatory/internal/observability"
)

const serviceName = "database"

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

	store := catalog.NewRedisStore(cfg.RedisAddr)
	defer store.Close()

	exchange := "observatory." + serviceName
	nodeCfg := config.NodeConfig{
		NodeName: serviceName,
		Exchanges: []config.Exchange{
			{Name: exchange, Type: "topic", Durable: true},
		},
		Bindings: []config.Binding{
			{Exchange: exchange, RoutingKey: commandRoute("get_satellite")},
			{Exchange: exchange, RoutingKey: commandRoute("get_satellite_ids")},
			{Exchange: exchange, RoutingKey: commandRoute("get_active_downlink_satellite_ids")},
			{Exchange: exchange, RoutingKey: commandRoute("upsert_satellite")},
		},
	}

	node, err := messagenode.New(nodeCfg, cfg.GetBrokerAddress(), rt.Logger,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()))
	if err != nil {
		return fmt.Errorf("%s: creating message node: %w", serviceName, err)
	}

	node.Bind(commandRoute("get_satellite"), func(ctx context.Context, env *envelope.Envelope) error {
		satID := env.Payload.Fields["sat_id"].GetStringValue()
		rec, err := store.QueryRecord(ctx, satID)
		if err != nil {
			return node.ReplyError(ctx, env, err)
		}
		payload, _ := structpb.NewStruct(map[string]any{
			"sat_id":          rec.SatID,
			"tle1":            rec.TLE1,
			"tle2":            rec.TLE2,
			"downlink_active": rec.DownlinkActive,
			"downlink_freqs":  floatsToAny(rec.DownlinkFreqsHz),
		})
		return node.Reply(ctx, env, payload)
	})

	node.Bind(commandRoute("get_satellite_ids"), func(ctx context.Context, env *envelope.Envelope) error {
		ids, err := store.GetSatelliteIDs(ctx)
		if err != nil {
			return node.ReplyError(ctx, env, err)
		}
		payload, _ := structpb.NewStruct(map[string]any{"sat_ids": stringsToAny(ids)})
		return node.Reply(ctx, env, payload)
	})

	node.Bind(commandRoute("get_active_downlink_satellite_ids"), func(ctx context.Context, env *envelope.Envelope) error {
		ids, err := store.GetActiveDownlinkSatelliteIDs(ctx)
		if err != nil {
			return node.ReplyError(ctx, env, err)
		}
		payload, _ := structpb.NewStruct(map[string]any{"sat_ids": stringsToAny(ids)})
		return node.Reply(ctx, env, payload)
	})

	node.Bind(commandRoute("upsert_satellite"), func(ctx context.Context, env *envelope.Envelope) error {
		freqs := env.Payload.Fields["downlink_freqs"].GetListValue()
		rec := catalog.Record{
			SatID:           env.Payload.Fields["sat_id"].GetStringValue(),
			TLE1:            env.Payload.Fields["tle1"].GetStringValue(),
			TLE2:            env.Payload.Fields["tle2"].GetStringValue(),
			DownlinkActive:  env.Payload.Fields["downlink_active"].GetBoolValue(),
			DownlinkFreqsHz: listToFloats(freqs),
		}
		if err := store.UpsertRecord(ctx, &rec); err != nil {
			return node.ReplyError(ctx, env, err)
		}
		ok, _ := structpb.NewStruct(map[string]any{"success": true})
		return node.Reply(ctx, env, ok)
	})

	if err := node.Start(ctx); err != nil {
		return fmt.Errorf("%s: starting message node: %w", serviceName, err)
	}

	rt.Logger.Info(serviceName + " service started")
	<-ctx.Done()
	rt.Logger.Info(serviceName + " received shutdown signal")
	return node.Stop()
}

func floatsToAny(fs []float64) []any {
	out := make([]any, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func listToFloats(lv *structpb.ListValue) []float64 {
	if lv == nil {
		return nil
	}
	out := make([]float64, 0, len(lv.Values))
	for _, v := range lv.Values {
		out = append(out, v.GetNumberValue())
	}
	return out
}

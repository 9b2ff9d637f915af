// Command astrodynamics runs the astrodynamics service: kinematic state,
// AOS/LOS search, and interpolated-orbit questions for catalog satellites,
// backed by a simulated propagator and the database service over RPC.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/je9pel/observatory/internal/astro"
	"github.com/je9pel/observatory/internal/config"
	"github.com/je9pel/observatory/internal/databaseclient"
	"github.com/je9pel/observatory/internal/envelope"
	"github.com/je9pel/observatory/internal/messagenode"
	"github.com/je9pel/observatory/internal/observability"
	"github.com/je9pel/observatory/internal/rpcclient"
)

const serviceName = "astrodynamics"

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
			{Exchange: exchange, RoutingKey: commandRoute("get_kinematic_state")},
			{Exchange: exchange, RoutingKey: commandRoute("get_aos_los")},
			{Exchange: exchange, RoutingKey: commandRoute("get_interpolated_orbit")},
			{Exchange: exchange, RoutingKey: commandRoute("get_all_aos_los")},
			{Exchange: exchange, RoutingKey: commandRoute("recompute_all_orbits")},
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

	tracker := astro.NewTracker(store, astro.NewSimulatedPropagator, cfg.MinElevationDeg, cfg.AosLosSearchSpan)

	node.Bind(commandRoute("get_kinematic_state"), func(ctx context.Context, env *envelope.Envelope) error {
		satID := env.Payload.Fields["sat_id"].GetStringValue()
		at := parseTimeField(env.Payload, "at", time.Now().UTC())
		state, err := tracker.GetKinematicState(ctx, satID, at)
		if err != nil {
			return node.ReplyError(ctx, env, err)
		}
		return node.Reply(ctx, env, kinematicStateStruct(state))
	})

	node.Bind(commandRoute("get_aos_los"), func(ctx context.Context, env *envelope.Envelope) error {
		satID := env.Payload.Fields["sat_id"].GetStringValue()
		aosLos, err := tracker.GetAosLos(ctx, satID)
		if err != nil {
			return node.ReplyError(ctx, env, err)
		}
		return node.Reply(ctx, env, aosLosStruct(aosLos))
	})

	node.Bind(commandRoute("get_interpolated_orbit"), func(ctx context.Context, env *envelope.Envelope) error {
		satID := env.Payload.Fields["sat_id"].GetStringValue()
		aos := parseTimeField(env.Payload, "aos", time.Time{})
		los := parseTimeField(env.Payload, "los", time.Time{})
		orbit, err := tracker.GetInterpolatedOrbit(ctx, satID, aos, los)
		if err != nil {
			return node.ReplyError(ctx, env, err)
		}
		return node.Reply(ctx, env, orbitStruct(orbit))
	})

	node.Bind(commandRoute("get_all_aos_los"), func(ctx context.Context, env *envelope.Envelope) error {
		start := parseTimeField(env.Payload, "start", time.Now().UTC())
		end := parseTimeField(env.Payload, "end", start.Add(cfg.AosLosSearchSpan))
		passes, err := tracker.GetAllAosLos(ctx, start, end)
		if err != nil {
			return node.ReplyError(ctx, env, err)
		}
		items := make([]any, len(passes))
		for i, p := range passes {
			items[i] = map[string]any{
				"sat_id": p.SatID,
				"aos":    p.Aos.Format(time.RFC3339Nano),
				"los":    p.Los.Format(time.RFC3339Nano),
			}
		}
		payload, _ := structpb.NewStruct(map[string]any{"passes": items})
		return node.Reply(ctx, env, payload)
	})

	node.Bind(commandRoute("recompute_all_orbits"), func(ctx context.Context, env *envelope.Envelope) error {
		failed, err := tracker.RecomputeAllOrbits(ctx)
		if err != nil {
			return node.ReplyError(ctx, env, err)
		}
		failedAny := make([]any, len(failed))
		for i, f := range failed {
			failedAny[i] = f
		}
		payload, _ := structpb.NewStruct(map[string]any{"failed": failedAny})
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

func parseTimeField(payload *structpb.Struct, key string, fallback time.Time) time.Time {
	s := payload.Fields[key].GetStringValue()
	if s == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fallback
	}
	return t
}

func kinematicStateStruct(s astro.KinematicState) *structpb.Struct {
	payload, _ := structpb.NewStruct(map[string]any{
		"az":         s.Az,
		"el":         s.El,
		"az_rate":    s.AzRate,
		"el_rate":    s.ElRate,
		"range":      s.Range,
		"range_rate": s.RangeRate,
		"time":       s.Time.Format(time.RFC3339Nano),
	})
	return payload
}

func eventStruct(e *astro.Event) any {
	if e == nil {
		return nil
	}
	return map[string]any{
		"time":  e.Time.Format(time.RFC3339Nano),
		"state": map[string]any{"az": e.State.Az, "el": e.State.El},
	}
}

func aosLosStruct(a astro.AosLos) *structpb.Struct {
	payload, _ := structpb.NewStruct(map[string]any{
		"valid": a.Valid(),
		"aos":   eventStruct(a.Aos),
		"tca":   eventStruct(a.Tca),
		"los":   eventStruct(a.Los),
	})
	return payload
}

func orbitStruct(o astro.InterpolatedOrbit) *structpb.Struct {
	az := make([]any, len(o.Az))
	el := make([]any, len(o.El))
	ts := make([]any, len(o.Time))
	for i := range o.Time {
		az[i] = o.Az[i]
		el[i] = o.El[i]
		ts[i] = o.Time[i].Format(time.RFC3339Nano)
	}
	payload, _ := structpb.NewStruct(map[string]any{"az": az, "el": el, "time": ts})
	return payload
}

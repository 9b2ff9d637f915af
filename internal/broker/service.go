// Package broker implements the topic-routed message bus every service in
// the mesh connects to: one gRPC service exposing Publish (unary) and
// Subscribe (server-streaming), keyed by routing key. A single fan-out
// table keyed by routing key serves every message shape in the mesh, all
// carried over one wire type, *structpb.Struct.
package broker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/je9pel/observatory/internal/observability"
)

const subscriberSendTimeout = 5 * time.Second

// Service implements EventBusServer.
type Service struct {
	UnimplementedEventBusServer

	mu          sync.RWMutex
	subscribers map[string][]chan *structpb.Struct // keyed by routing key
	exchanges   map[string]exchangeInfo

	Logger  *slog.Logger
	Tracer  *observability.TraceManager
	Metrics *observability.MetricsManager
}

type exchangeInfo struct {
	kind       string
	durable    bool
	autoDelete bool
}

// NewService creates an EventBus broker service.
func NewService(logger *slog.Logger, tracer *observability.TraceManager, metrics *observability.MetricsManager) *Service {
	return &Service{
		subscribers: make(map[string][]chan *structpb.Struct),
		exchanges:   make(map[string]exchangeInfo),
		Logger:      logger,
		Tracer:      tracer,
		Metrics:     metrics,
	}
}

// DeclareExchange records an exchange's settings. Declaration failures are
// never fatal to the caller (per the runtime's startup semantics); this
// implementation fails only for an empty exchange name, with InvalidArgument.
func (s *Service) DeclareExchange(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := req.Fields["name"].GetStringValue()
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "exchange name cannot be empty")
	}
	s.mu.Lock()
	s.exchanges[name] = exchangeInfo{
		kind:       req.Fields["type"].GetStringValue(),
		durable:    req.Fields["durable"].GetBoolValue(),
		autoDelete: req.Fields["auto_delete"].GetBoolValue(),
	}
	s.mu.Unlock()

	s.Logger.InfoContext(ctx, "exchange declared", "exchange", name)
	ok, _ := structpb.NewStruct(map[string]any{"success": true})
	return ok, nil
}

// Publish routes an envelope to every subscriber bound to its routing key.
func (s *Service) Publish(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	routingKey := req.Fields["routing_key"].GetStringValue()
	if routingKey == "" {
		return nil, status.Error(codes.InvalidArgument, "routing_key cannot be empty")
	}
	env := req.Fields["envelope"].GetStructValue()
	if env == nil {
		return nil, status.Error(codes.InvalidArgument, "envelope cannot be nil")
	}

	ctx, span := s.Tracer.StartPublishSpan(ctx, routingKey, env.Fields["kind"].GetStringValue())
	defer span.End()
	s.Tracer.AddComponentAttribute(span, "broker")
	timer := s.Metrics.StartTimer()
	defer timer(ctx, env.Fields["kind"].GetStringValue(), "broker")

	start := time.Now()
	defer func() { s.Metrics.RecordBrokerPublishDuration(ctx, routingKey, time.Since(start)) }()

	s.mu.RLock()
	targets := append([]chan *structpb.Struct(nil), s.subscribers[routingKey]...)
	s.mu.RUnlock()

	if len(targets) == 0 {
		s.Logger.InfoContext(ctx, "no subscribers for routing key", "routing_key", routingKey)
		ok, _ := structpb.NewStruct(map[string]any{"success": true, "delivered": 0})
		return ok, nil
	}

	delivered := 0
	for _, ch := range targets {
		go deliver(ctx, ch, env, s)
		delivered++
	}

	s.Metrics.IncrementEventsPublished(ctx, env.Fields["kind"].GetStringValue(), routingKey)
	s.Tracer.SetSpanSuccess(span)

	ok, _ := structpb.NewStruct(map[string]any{"success": true, "delivered": float64(delivered)})
	return ok, nil
}

func deliver(ctx context.Context, ch chan *structpb.Struct, env *structpb.Struct, s *Service) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.ErrorContext(ctx, "recovered from panic while delivering envelope", "panic", r)
		}
	}()
	select {
	case ch <- env:
	case <-ctx.Done():
		s.Logger.InfoContext(ctx, "context cancelled while delivering envelope")
	case <-time.After(subscriberSendTimeout):
		s.Logger.InfoContext(ctx, "timeout delivering envelope to subscriber")
	}
}

// Subscribe streams every envelope published to the requested routing key.
func (s *Service) Subscribe(req *structpb.Struct, stream EventBus_SubscribeServer) error {
	ctx := stream.Context()
	routingKey := req.Fields["routing_key"].GetStringValue()
	if routingKey == "" {
		return status.Error(codes.InvalidArgument, "routing_key cannot be empty")
	}

	ctx, span := s.Tracer.StartConsumeSpan(ctx, routingKey, "subscription")
	defer span.End()
	s.Tracer.AddComponentAttribute(span, "broker")

	subChan := make(chan *structpb.Struct, 16)
	s.mu.Lock()
	s.subscribers[routingKey] = append(s.subscribers[routingKey], subChan)
	s.mu.Unlock()

	s.Logger.InfoContext(ctx, "subscriber registered", "routing_key", routingKey)

	defer func() {
		s.mu.Lock()
		subs := s.subscribers[routingKey]
		kept := subs[:0]
		for _, ch := range subs {
			if ch != subChan {
				kept = append(kept, ch)
			}
		}
		if len(kept) == 0 {
			delete(s.subscribers, routingKey)
		} else {
			s.subscribers[routingKey] = kept
		}
		s.mu.Unlock()
		close(subChan)
		s.Logger.InfoContext(ctx, "subscriber unregistered", "routing_key", routingKey)
	}()

	for {
		select {
		case env, ok := <-subChan:
			if !ok {
				return nil
			}
			start := time.Now()
			if err := stream.Send(env); err != nil {
				s.Logger.ErrorContext(ctx, "error sending envelope to subscriber", "routing_key", routingKey, "error", err)
				return err
			}
			s.Metrics.RecordBrokerConsumeDuration(ctx, routingKey, time.Since(start))
			s.Metrics.IncrementEventsProcessed(ctx, env.Fields["kind"].GetStringValue(), routingKey, true)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

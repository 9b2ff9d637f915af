// Package rpcclient provides the thin per-service RPC client shape every
// cross-service dependency in this mesh is built from: a command name, a
// parameter bag, and a blocking round trip over a messagenode.Node. It
// generalizes hamilton's per-operator `client.py` modules (DBQueryClient,
// AstrodynamicsClient, SchedulerClient, ...), which all share this same
// publish-command/await-correlated-response shape over pika, into one Go
// type parameterized by peer service name instead of one hand-written
// client per service.
//
// Every command.* a Client issues is answered by a telemetry message on the
// matching observatory.<service>.telemetry.<verb> route, stamped with the
// same correlation id — never a private reply queue. Callers must bind
// every verb they intend to call via BindVerbs before starting their node.
package rpcclient

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/je9pel/observatory/internal/envelope"
	"github.com/je9pel/observatory/internal/messagenode"
)

// Client issues RPC commands to one peer service.
type Client struct {
	node           *messagenode.Node
	service        string // e.g. "astrodynamics"
	defaultTimeout time.Duration
}

// New creates a Client that issues commands to service over node, waiting
// up to defaultTimeout for each response.
func New(node *messagenode.Node, service string, defaultTimeout time.Duration) *Client {
	return &Client{node: node, service: service, defaultTimeout: defaultTimeout}
}

// BindVerbs subscribes node to the telemetry route answering each verb, so
// that PublishRPC's correlation-id wait can observe the response. Must be
// called before the owning node's Start.
func (c *Client) BindVerbs(verbs ...string) {
	for _, verb := range verbs {
		telemetryRoute := fmt.Sprintf("observatory.%s.telemetry.%s", c.service, verb)
		c.node.Bind(telemetryRoute, func(ctx context.Context, env *envelope.Envelope) error {
			return nil // correlation delivery already handled by rpcmanager in consume
		})
	}
}

// Call issues verb with parameters and blocks for the response.
func (c *Client) Call(ctx context.Context, verb string, parameters map[string]any) (*structpb.Struct, error) {
	payload, err := structpb.NewStruct(parameters)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: building parameters for %s: %w", verb, err)
	}
	env := c.node.Generator().Command(verb, payload)
	routingKey := fmt.Sprintf("observatory.%s.command.%s", c.service, verb)
	resp, err := c.node.PublishRPC(ctx, routingKey, env, c.defaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: calling %s: %w", verb, err)
	}
	if errMsg := resp.Fields["error"].GetStringValue(); errMsg != "" {
		return nil, fmt.Errorf("rpcclient: %s: %s", verb, errMsg)
	}
	return resp, nil
}

// Notify issues verb without waiting for a response, used for fire-and-forget
// commands such as enqueue_collect_request.
func (c *Client) Notify(ctx context.Context, verb string, parameters map[string]any) error {
	payload, err := structpb.NewStruct(parameters)
	if err != nil {
		return fmt.Errorf("rpcclient: building parameters for %s: %w", verb, err)
	}
	env := c.node.Generator().Command(verb, payload)
	routingKey := fmt.Sprintf("observatory.%s.command.%s", c.service, verb)
	return c.node.Publish(ctx, routingKey, env)
}

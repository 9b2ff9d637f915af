// Package orchestratorclient adapts internal/rpcclient.Client to
// scheduler.Orchestrator, so the scheduler process can dispatch tasks over
// RPC rather than holding an orchestrator.Service instance directly —
// orchestrator runs as its own process.
package orchestratorclient

import (
	"context"

	"github.com/je9pel/observatory/internal/rpcclient"
	"github.com/je9pel/observatory/internal/task"
	"github.com/je9pel/observatory/internal/taskwire"
)

// Verbs this package calls on the orchestrator service; callers must pass
// these to rpcclient.Client.BindVerbs before starting their node.
const (
	VerbOrchestrate = "orchestrate"
	VerbStatus      = "status"
)

// Verbs returns every verb this client calls, for BindVerbs.
func Verbs() []string {
	return []string{VerbOrchestrate, VerbStatus}
}

// Client is a scheduler.Orchestrator implementation backed by RPC calls to
// the orchestrator service.
type Client struct {
	rpc *rpcclient.Client
}

// New wraps rpc, which must already target the "orchestrator" service.
func New(rpc *rpcclient.Client) *Client {
	return &Client{rpc: rpc}
}

// Orchestrate satisfies scheduler.Orchestrator.
func (c *Client) Orchestrate(ctx context.Context, t *task.Task) error {
	_, err := c.rpc.Call(ctx, VerbOrchestrate, taskwire.ToStruct(t).AsMap())
	return err
}

// IsRunning satisfies scheduler.Orchestrator.
func (c *Client) IsRunning() bool {
	resp, err := c.rpc.Call(context.Background(), VerbStatus, nil)
	if err != nil {
		return false
	}
	return resp.Fields["status"].GetStringValue() == "active"
}

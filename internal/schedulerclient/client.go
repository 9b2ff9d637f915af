// Package schedulerclient adapts internal/rpcclient.Client to
// hxmadapter.Scheduler, so the hxm-adapter process can enqueue translated
// collect requests over RPC rather than holding a scheduler.Scheduler
// instance directly — scheduler runs as its own process.
package schedulerclient

import (
	"context"

	"github.com/je9pel/observatory/internal/rpcclient"
	"github.com/je9pel/observatory/internal/task"
	"github.com/je9pel/observatory/internal/taskwire"
)

// Verbs this package calls on the scheduler service; callers must pass
// these to rpcclient.Client.BindVerbs before starting their node.
const (
	VerbEnqueueCollectRequest = "enqueue_collect_request"
)

// Verbs returns every verb this client calls, for BindVerbs.
func Verbs() []string {
	return []string{VerbEnqueueCollectRequest}
}

// Client is an hxmadapter.Scheduler implementation backed by RPC calls to
// the scheduler service.
type Client struct {
	rpc *rpcclient.Client
}

// New wraps rpc, which must already target the "scheduler" service.
func New(rpc *rpcclient.Client) *Client {
	return &Client{rpc: rpc}
}

// EnqueueTask satisfies hxmadapter.Scheduler. The command is fire-and-forget,
// matching EnqueueTask's signature, which returns nothing for the adapter
// to propagate.
func (c *Client) EnqueueTask(t *task.Task) {
	_ = c.rpc.Notify(context.Background(), VerbEnqueueCollectRequest, taskwire.ToStruct(t).AsMap())
}

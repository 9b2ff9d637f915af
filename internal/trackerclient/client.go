// Package trackerclient adapts internal/rpcclient.Client to
// orchestrator.TrackerDriver, so the orchestrator process can drive slewing
// and tracking over RPC rather than holding a tracker.Service instance
// directly — tracker runs as its own process.
package trackerclient

import (
	"context"
	"fmt"
	"time"

	"github.com/je9pel/observatory/internal/rpcclient"
	"github.com/je9pel/observatory/internal/task"
	"github.com/je9pel/observatory/internal/taskwire"
)

// Verbs this package calls on the tracker service; callers must pass these
// to rpcclient.Client.BindVerbs before starting their node.
const (
	VerbStartTracking = "start_tracking"
	VerbStopTracking  = "stop_tracking"
	VerbSlewToHome    = "slew_to_home"
	VerbSlewToAos     = "slew_to_aos"
	VerbStatus        = "status"
)

// Verbs returns every verb this client calls, for BindVerbs.
func Verbs() []string {
	return []string{VerbStartTracking, VerbStopTracking, VerbSlewToHome, VerbSlewToAos, VerbStatus}
}

// Client is an orchestrator.TrackerDriver implementation backed by RPC
// calls to the tracker service. SetupTask only caches the task locally;
// its fields ride along with the next slew_to_aos or start_tracking call,
// since the tracker service computes its own rotor angles on receipt.
type Client struct {
	rpc  *rpcclient.Client
	task *task.Task
}

// New wraps rpc, which must already target the "tracker" service.
func New(rpc *rpcclient.Client) *Client {
	return &Client{rpc: rpc}
}

// SetupTask satisfies orchestrator.TrackerDriver.
func (c *Client) SetupTask(t *task.Task) error {
	if t == nil {
		return fmt.Errorf("trackerclient: setup task: task is nil")
	}
	c.task = t
	return nil
}

// SlewToHome satisfies orchestrator.TrackerDriver.
func (c *Client) SlewToHome(ctx context.Context) error {
	_, err := c.rpc.Call(ctx, VerbSlewToHome, nil)
	return err
}

// SlewToAos satisfies orchestrator.TrackerDriver.
func (c *Client) SlewToAos(ctx context.Context) error {
	if c.task == nil {
		return fmt.Errorf("trackerclient: slew to aos: no task set up")
	}
	_, err := c.rpc.Call(ctx, VerbSlewToAos, taskwire.ToStruct(c.task).AsMap())
	return err
}

// Track satisfies orchestrator.TrackerDriver: it starts the tracker's
// tracking loop, blocks until ctx is cancelled, then stops it.
func (c *Client) Track(ctx context.Context) error {
	if c.task == nil {
		return fmt.Errorf("trackerclient: track: no task set up")
	}
	if _, err := c.rpc.Call(ctx, VerbStartTracking, taskwire.ToStruct(c.task).AsMap()); err != nil {
		return fmt.Errorf("trackerclient: starting tracking: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := c.rpc.Call(stopCtx, VerbStopTracking, nil); err != nil {
		return fmt.Errorf("trackerclient: stopping tracking: %w", err)
	}
	return nil
}

// Status reports the tracker service's current tracking status.
func (c *Client) Status(ctx context.Context) (string, error) {
	resp, err := c.rpc.Call(ctx, VerbStatus, nil)
	if err != nil {
		return "", err
	}
	return resp.Fields["status"].GetStringValue(), nil
}

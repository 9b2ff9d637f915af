// Package astrodynamicsclient adapts internal/rpcclient.Client to
// tracker.KinematicSource and task.AstrodynamicsLookup, so the tracker and
// scheduler-side processes can reach astrodynamics over RPC rather than
// holding an astro.Tracker instance directly — astrodynamics runs as its
// own process.
package astrodynamicsclient

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/je9pel/observatory/internal/astro"
	"github.com/je9pel/observatory/internal/rpcclient"
)

// Verbs this package calls on the astrodynamics service; callers must pass
// these to rpcclient.Client.BindVerbs before starting their node.
const (
	VerbGetKinematicState    = "get_kinematic_state"
	VerbGetAosLos            = "get_aos_los"
	VerbGetInterpolatedOrbit = "get_interpolated_orbit"
)

// Verbs returns every verb this client calls, for BindVerbs.
func Verbs() []string {
	return []string{VerbGetKinematicState, VerbGetAosLos, VerbGetInterpolatedOrbit}
}

// Client is a tracker.KinematicSource implementation backed by RPC calls to
// the astrodynamics service.
type Client struct {
	rpc *rpcclient.Client
}

// New wraps rpc, which must already target the "astrodynamics" service.
func New(rpc *rpcclient.Client) *Client {
	return &Client{rpc: rpc}
}

// GetKinematicState satisfies tracker.KinematicSource.
func (c *Client) GetKinematicState(ctx context.Context, satID string, at time.Time) (astro.KinematicState, error) {
	resp, err := c.rpc.Call(ctx, VerbGetKinematicState, map[string]any{
		"sat_id": satID,
		"at":     at.Format(time.RFC3339Nano),
	})
	if err != nil {
		return astro.KinematicState{}, err
	}
	return astro.KinematicState{
		Az:        resp.Fields["az"].GetNumberValue(),
		El:        resp.Fields["el"].GetNumberValue(),
		AzRate:    resp.Fields["az_rate"].GetNumberValue(),
		ElRate:    resp.Fields["el_rate"].GetNumberValue(),
		Range:     resp.Fields["range"].GetNumberValue(),
		RangeRate: resp.Fields["range_rate"].GetNumberValue(),
		Time:      parseTime(resp.Fields["time"].GetStringValue(), at),
	}, nil
}

// GetAosLos satisfies task.AstrodynamicsLookup.
func (c *Client) GetAosLos(ctx context.Context, satID string) (astro.AosLos, error) {
	resp, err := c.rpc.Call(ctx, VerbGetAosLos, map[string]any{"sat_id": satID})
	if err != nil {
		return astro.AosLos{}, err
	}
	return astro.AosLos{
		Aos: eventFromValue(resp.Fields["aos"]),
		Tca: eventFromValue(resp.Fields["tca"]),
		Los: eventFromValue(resp.Fields["los"]),
	}, nil
}

// GetInterpolatedOrbit satisfies task.AstrodynamicsLookup.
func (c *Client) GetInterpolatedOrbit(ctx context.Context, satID string, aos, los time.Time) (astro.InterpolatedOrbit, error) {
	resp, err := c.rpc.Call(ctx, VerbGetInterpolatedOrbit, map[string]any{
		"sat_id": satID,
		"aos":    aos.Format(time.RFC3339Nano),
		"los":    los.Format(time.RFC3339Nano),
	})
	if err != nil {
		return astro.InterpolatedOrbit{}, err
	}
	azList := resp.Fields["az"].GetListValue().GetValues()
	elList := resp.Fields["el"].GetListValue().GetValues()
	tsList := resp.Fields["time"].GetListValue().GetValues()
	orbit := astro.InterpolatedOrbit{
		Az:   make([]float64, len(azList)),
		El:   make([]float64, len(elList)),
		Time: make([]time.Time, len(tsList)),
	}
	for i, v := range azList {
		orbit.Az[i] = v.GetNumberValue()
	}
	for i, v := range elList {
		orbit.El[i] = v.GetNumberValue()
	}
	for i, v := range tsList {
		orbit.Time[i] = parseTime(v.GetStringValue(), time.Time{})
	}
	return orbit, nil
}

func eventFromValue(v *structpb.Value) *astro.Event {
	s := v.GetStructValue()
	if s == nil {
		return nil
	}
	return &astro.Event{
		Time: parseTime(s.Fields["time"].GetStringValue(), time.Time{}),
		State: astro.KinematicState{
			Az: s.Fields["state"].GetStructValue().Fields["az"].GetNumberValue(),
			El: s.Fields["state"].GetStructValue().Fields["el"].GetNumberValue(),
		},
	}
}

func parseTime(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fallback
	}
	return t
}

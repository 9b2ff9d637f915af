// Package databaseclient adapts internal/rpcclient.Client to the narrow
// store-shaped interfaces the astrodynamics, radiometrics and scheduler
// services depend on, so that each can be satisfied cross-process without
// any component but the database service itself ever touching Redis — the
// catalog store is reachable exclusively through the database service's
// command routing keys.
package databaseclient

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/je9pel/observatory/internal/catalog"
	"github.com/je9pel/observatory/internal/rpcclient"
)

// Verbs this package calls on the database service; callers must pass these
// to rpcclient.Client.BindVerbs before starting their node.
const (
	VerbGetSatellite                = "get_satellite"
	VerbGetSatelliteIDs             = "get_satellite_ids"
	VerbGetActiveDownlinkSatellites = "get_active_downlink_satellite_ids"
	VerbUpsertSatellite             = "upsert_satellite"
)

// Verbs returns every verb this client calls, for BindVerbs.
func Verbs() []string {
	return []string{VerbGetSatellite, VerbGetSatelliteIDs, VerbGetActiveDownlinkSatellites, VerbUpsertSatellite}
}

// Client is a catalog.Store, astro.SatelliteStore and scheduler.TargetSource
// implementation backed by RPC calls to the database service.
type Client struct {
	rpc *rpcclient.Client
}

// New wraps rpc, which must already target the "database" service.
func New(rpc *rpcclient.Client) *Client {
	return &Client{rpc: rpc}
}

// QueryRecord satisfies catalog.Store.
func (c *Client) QueryRecord(ctx context.Context, satID string) (*catalog.Record, error) {
	resp, err := c.rpc.Call(ctx, VerbGetSatellite, map[string]any{"sat_id": satID})
	if err != nil {
		return nil, err
	}
	return &catalog.Record{
		SatID:           resp.Fields["sat_id"].GetStringValue(),
		TLE1:            resp.Fields["tle1"].GetStringValue(),
		TLE2:            resp.Fields["tle2"].GetStringValue(),
		DownlinkActive:  resp.Fields["downlink_active"].GetBoolValue(),
		DownlinkFreqsHz: floatList(resp.Fields["downlink_freqs"]),
	}, nil
}

// GetSatelliteIDs satisfies catalog.Store.
func (c *Client) GetSatelliteIDs(ctx context.Context) ([]string, error) {
	resp, err := c.rpc.Call(ctx, VerbGetSatelliteIDs, nil)
	if err != nil {
		return nil, err
	}
	return stringList(resp.Fields["sat_ids"]), nil
}

// GetActiveDownlinkSatelliteIDs satisfies catalog.Store and
// scheduler.TargetSource.
func (c *Client) GetActiveDownlinkSatelliteIDs(ctx context.Context) ([]string, error) {
	resp, err := c.rpc.Call(ctx, VerbGetActiveDownlinkSatellites, nil)
	if err != nil {
		return nil, err
	}
	return stringList(resp.Fields["sat_ids"]), nil
}

// UpsertRecord satisfies catalog.Store.
func (c *Client) UpsertRecord(ctx context.Context, rec *catalog.Record) error {
	_, err := c.rpc.Call(ctx, VerbUpsertSatellite, map[string]any{
		"sat_id":          rec.SatID,
		"tle1":            rec.TLE1,
		"tle2":            rec.TLE2,
		"downlink_active": rec.DownlinkActive,
		"downlink_freqs":  toAnySlice(rec.DownlinkFreqsHz),
	})
	return err
}

// GetTLE satisfies astro.SatelliteStore.
func (c *Client) GetTLE(ctx context.Context, satID string) (tle1, tle2 string, err error) {
	rec, err := c.QueryRecord(ctx, satID)
	if err != nil {
		return "", "", fmt.Errorf("databaseclient: fetching tle for %s: %w", satID, err)
	}
	return rec.TLE1, rec.TLE2, nil
}

// ListSatelliteIDs satisfies astro.SatelliteStore.
func (c *Client) ListSatelliteIDs(ctx context.Context) ([]string, error) {
	return c.GetSatelliteIDs(ctx)
}

func toAnySlice(fs []float64) []any {
	out := make([]any, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

func floatList(v *structpb.Value) []float64 {
	lv := v.GetListValue()
	if lv == nil {
		return nil
	}
	out := make([]float64, 0, len(lv.Values))
	for _, e := range lv.Values {
		out = append(out, e.GetNumberValue())
	}
	return out
}

func stringList(v *structpb.Value) []string {
	lv := v.GetListValue()
	if lv == nil {
		return nil
	}
	out := make([]string, 0, len(lv.Values))
	for _, e := range lv.Values {
		out = append(out, e.GetStringValue())
	}
	return out
}

// Package catalog is the keyed satellite-record store: one TLE plus its
// JE9PEL downlink metadata per catalog id, queried by the astrodynamics
// and radiometrics services. It is the Go analogue of hamilton's
// operators.database.controller.DBControllerCommandHandler, which wraps a
// MongoDB collection; this package wraps Redis instead, since the
// catalog's access pattern (point lookups and small distinct-id scans
// keyed by norad_cat_id) is a keyed-document shape Redis serves directly
// without a schema migration story.
package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	recordKeyPrefix = "observatory:satellite:"
	idSetKey        = "observatory:satellite:ids"
	downlinkSetKey  = "observatory:satellite:downlink_active"
)

// Record is one satellite's catalog entry: its TLE and whether JE9PEL
// marks it as having an active downlink.
type Record struct {
	SatID           string
	TLE1            string
	TLE2            string
	DownlinkActive  bool
	DownlinkFreqsHz []float64
}

// Store is the catalog's persistence contract.
type Store interface {
	QueryRecord(ctx context.Context, satID string) (*Record, error)
	GetSatelliteIDs(ctx context.Context) ([]string, error)
	GetActiveDownlinkSatelliteIDs(ctx context.Context) ([]string, error)
	UpsertRecord(ctx context.Context, rec *Record) error
}

// RedisStore is a Store backed by a Redis HSET per satellite id, with two
// supporting sets (all ids, and ids with an active downlink) maintained on
// every upsert for O(1) membership scans.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore dialing addr.
func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func recordKey(satID string) string { return recordKeyPrefix + satID }

// QueryRecord returns the catalog record for satID, mirroring
// query_record's find_one by norad_cat_id.
func (s *RedisStore) QueryRecord(ctx context.Context, satID string) (*Record, error) {
	vals, err := s.client.HGetAll(ctx, recordKey(satID)).Result()
	if err != nil {
		return nil, fmt.Errorf("catalog: querying record %s: %w", satID, err)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("catalog: no record for satellite %s", satID)
	}
	active, _ := strconv.ParseBool(vals["downlink_active"])
	return &Record{
		SatID:          satID,
		TLE1:           vals["tle1"],
		TLE2:           vals["tle2"],
		DownlinkActive: active,
	}, nil
}

// GetSatelliteIDs returns every catalog id, mirroring get_satellite_ids's
// distinct norad_cat_id scan.
func (s *RedisStore) GetSatelliteIDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, idSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("catalog: listing satellite ids: %w", err)
	}
	return ids, nil
}

// GetActiveDownlinkSatelliteIDs returns every catalog id JE9PEL marks as
// having an active downlink, mirroring get_active_downlink_satellite_ids's
// projected find.
func (s *RedisStore) GetActiveDownlinkSatelliteIDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, downlinkSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("catalog: listing active-downlink satellite ids: %w", err)
	}
	return ids, nil
}

// UpsertRecord writes rec and maintains the id and active-downlink sets.
func (s *RedisStore) UpsertRecord(ctx context.Context, rec *Record) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, recordKey(rec.SatID), map[string]any{
		"tle1":            rec.TLE1,
		"tle2":            rec.TLE2,
		"downlink_active": rec.DownlinkActive,
	})
	pipe.SAdd(ctx, idSetKey, rec.SatID)
	if rec.DownlinkActive {
		pipe.SAdd(ctx, downlinkSetKey, rec.SatID)
	} else {
		pipe.SRem(ctx, downlinkSetKey, rec.SatID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("catalog: upserting record %s: %w", rec.SatID, err)
	}
	return nil
}

// Close releases the underlying Redis connection pool.
func (s *RedisStore) Close() error { return s.client.Close() }

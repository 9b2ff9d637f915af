// Package radiometrics answers the one RF question this system needs: the
// ranked list of candidate downlink frequencies for a catalog satellite.
// It is the Go analogue of hamilton's radiometrics.api.Radiometrics,
// collapsed to a single source of ranked frequencies since this
// repository's catalog.Record already stores them pre-ranked rather than
// carrying the full JE9PEL/SatNOGS transmitter schemas those rankings were
// originally derived from.
package radiometrics

import (
	"context"
	"fmt"

	"github.com/je9pel/observatory/internal/catalog"
)

// Service answers downlink-frequency questions against the catalog store.
type Service struct {
	store catalog.Store
}

// New creates a radiometrics Service backed by store.
func New(store catalog.Store) *Service {
	return &Service{store: store}
}

// GetDownlinkFreqs returns the ranked, duplicate-free list of candidate
// downlink frequencies (Hz) for satID, best candidate first.
func (s *Service) GetDownlinkFreqs(ctx context.Context, satID string) ([]float64, error) {
	rec, err := s.store.QueryRecord(ctx, satID)
	if err != nil {
		return nil, fmt.Errorf("radiometrics: querying record for %s: %w", satID, err)
	}
	return dedupe(rec.DownlinkFreqsHz), nil
}

func dedupe(freqs []float64) []float64 {
	seen := make(map[float64]bool, len(freqs))
	out := make([]float64, 0, len(freqs))
	for _, f := range freqs {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

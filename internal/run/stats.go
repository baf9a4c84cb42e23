package run

import (
	"sync/atomic"
	"time"

	"github.com/shelfwatch/shelfwatch/internal/types"
)

// Stats tracks sweep statistics across the whole run.
type Stats struct {
	ChecksTotal atomic.Int64
	OK          atomic.Int64
	OutOfStock  atomic.Int64
	NotFound    atomic.Int64
	Blocked     atomic.Int64

	StoresSwept atomic.Int64
	StartTime   time.Time
}

// Record tallies one classified outcome.
func (s *Stats) Record(status types.Status) {
	s.ChecksTotal.Add(1)
	switch status {
	case types.StatusOK:
		s.OK.Add(1)
	case types.StatusOutOfStock:
		s.OutOfStock.Add(1)
	case types.StatusNotFound:
		s.NotFound.Add(1)
	case types.StatusBlocked:
		s.Blocked.Add(1)
	}
}

// Snapshot returns a copy of stats safe for reading.
func (s *Stats) Snapshot() map[string]any {
	return map[string]any{
		"checks_total": s.ChecksTotal.Load(),
		"ok":           s.OK.Load(),
		"out_of_stock": s.OutOfStock.Load(),
		"not_found":    s.NotFound.Load(),
		"blocked":      s.Blocked.Load(),
		"stores_swept": s.StoresSwept.Load(),
		"elapsed":      time.Since(s.StartTime).String(),
	}
}

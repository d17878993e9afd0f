package timedcache

import "sync/atomic"

// Stats is a point-in-time copy of the cache counters.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Expired       uint64 // misses caused by an entry past its TTL
	ComputeErrors uint64
	StaleSkipped  uint64 // computed values dropped because an invalidation raced them
	Invalidations uint64 // Invalidate, InvalidatePrefix and Clear calls that reached the gen store
}

type counters struct {
	hits, misses, expired, computeErrors, staleSkipped, invalidations atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Expired:       c.expired.Load(),
		ComputeErrors: c.computeErrors.Load(),
		StaleSkipped:  c.staleSkipped.Load(),
		Invalidations: c.invalidations.Load(),
	}
}

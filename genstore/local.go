package genstore

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type scopeGen struct {
	gen    uint64
	bumped time.Time
}

// LocalGenStore keeps generations in process memory. It is the default for a
// single console instance.
//
// Scopes not bumped for longer than the retention are pruned. A pruned or
// never-bumped scope reads as the floor, the highest generation ever pruned,
// so a scope's generation never goes backwards and an entry written before a
// bump can not become valid again. Pruning only costs extra misses.
type LocalGenStore struct {
	mu    sync.RWMutex
	gens  map[string]scopeGen
	floor uint64
	clock clockwork.Clock

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

var _ GenStore = (*LocalGenStore)(nil)

type LocalOption func(*LocalGenStore)

// WithClock replaces the wall clock used for bump times and the cleanup ticker.
func WithClock(c clockwork.Clock) LocalOption {
	return func(s *LocalGenStore) { s.clock = c }
}

// NewLocalGenStore starts a cleanup loop when both cleanupInterval and
// retention are positive.
func NewLocalGenStore(cleanupInterval, retention time.Duration, opts ...LocalOption) *LocalGenStore {
	s := &LocalGenStore{
		gens:  make(map[string]scopeGen),
		clock: clockwork.NewRealClock(),
	}
	for _, o := range opts {
		o(s)
	}
	if cleanupInterval > 0 && retention > 0 {
		s.stop = make(chan struct{})
		s.done = make(chan struct{})
		go s.sweep(cleanupInterval, retention)
	}
	return s
}

func (s *LocalGenStore) sweep(every, retention time.Duration) {
	defer close(s.done)
	t := s.clock.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.Chan():
			s.Cleanup(retention)
		case <-s.stop:
			return
		}
	}
}

func (s *LocalGenStore) Snapshot(_ context.Context, scopeKey string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(scopeKey), nil
}

// SnapshotMany reads every scope under one lock, so the vector never mixes
// generations from before and after a concurrent bump.
func (s *LocalGenStore) SnapshotMany(_ context.Context, scopeKeys []string) (map[string]uint64, error) {
	out := make(map[string]uint64, len(scopeKeys))
	s.mu.RLock()
	for _, k := range scopeKeys {
		out[k] = s.read(k)
	}
	s.mu.RUnlock()
	return out, nil
}

func (s *LocalGenStore) read(k string) uint64 {
	if g, ok := s.gens[k]; ok {
		return g.gen
	}
	return s.floor
}

func (s *LocalGenStore) Bump(_ context.Context, scopeKey string) (uint64, error) {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.read(scopeKey) + 1
	s.gens[scopeKey] = scopeGen{gen: next, bumped: now}
	return next, nil
}

// Cleanup forgets scopes whose last bump is older than retention and raises
// the floor to the highest generation forgotten.
func (s *LocalGenStore) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := s.clock.Now().Add(-retention)

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, g := range s.gens {
		if g.bumped.Before(cutoff) {
			if g.gen > s.floor {
				s.floor = g.gen
			}
			delete(s.gens, k)
		}
	}
}

// Len reports how many scopes are tracked individually.
func (s *LocalGenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.gens)
}

func (s *LocalGenStore) Close(context.Context) error {
	s.once.Do(func() {
		if s.stop != nil {
			close(s.stop)
			<-s.done
		}
	})
	return nil
}

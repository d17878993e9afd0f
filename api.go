package timedcache

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	c "github.com/unkn0wn-root/timedcache/codec"
	gen "github.com/unkn0wn-root/timedcache/genstore"
	pr "github.com/unkn0wn-root/timedcache/provider"
)

const (
	defaultTTL          = time.Second
	defaultSlowCompute  = time.Second
	defaultGenRetention = 30 * 24 * time.Hour
	defaultSweep        = time.Hour
)

// ComputeFunc produces the value for a key on a miss. It should be free of
// side effects: the cache may drop its result instead of storing it.
type ComputeFunc[V any] func(ctx context.Context) (V, error)

// SetCostFunc reports the cost of an encoded entry for cost-aware providers.
type SetCostFunc func(storageKey string, raw []byte) int64

// TimedCache is the read-through cache. V is the caller's value type.
type TimedCache[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// GetOrCompute is GetOrComputeTTL with Options.DefaultTTL.
	GetOrCompute(ctx context.Context, key string, fn ComputeFunc[V]) (V, error)
	// GetOrComputeTTL returns the stored value for key if it is younger than
	// its TTL and no covering generation moved; otherwise it runs fn once,
	// stores the result and returns it. Errors from fn are returned unchanged
	// and nothing is stored.
	GetOrComputeTTL(ctx context.Context, key string, fn ComputeFunc[V], ttl time.Duration) (V, error)

	// Invalidate forces the next read of exactly key to miss.
	Invalidate(ctx context.Context, key string) error
	// InvalidatePrefix forces the next read of every key inside scope prefix
	// to miss. Prefixes match whole ':' segments.
	InvalidatePrefix(ctx context.Context, prefix string) error
	// Clear forces every key of the namespace to miss.
	Clear(ctx context.Context) error

	Stats() Stats
}

// Options tune the cache. Namespace, Provider and Codec are required; others
// have defaults.
type Options[V any] struct {
	// Required
	Namespace string // isolates keys when several caches share a provider, e.g. "console:instances"
	Provider  pr.Provider
	Codec     c.Codec[V]

	Logger Logger          // nil => NopLogger
	Hooks  Hooks           // nil => NopHooks
	Clock  clockwork.Clock // nil => real clock

	DefaultTTL  time.Duration // 0 => 1s; negative is rejected
	SlowCompute time.Duration // warn threshold for fn; 0 => 1s; negative disables

	GenStore        gen.GenStore  // nil => LocalGenStore owned (and closed) by the cache
	CleanupInterval time.Duration // local gen sweep; 0 => 1h
	GenRetention    time.Duration // local gen retention; 0 => 30d

	ComputeSetCost    SetCostFunc // default 1
	DisableCoalescing bool        // default false => concurrent misses share one fn call
	Disabled          bool        // default false; disabled => every call runs fn
}

func New[V any](opts Options[V]) (TimedCache[V], error) {
	return newCache[V](opts)
}

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

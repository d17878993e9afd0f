package timedcache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	c "github.com/unkn0wn-root/timedcache/codec"
	gen "github.com/unkn0wn-root/timedcache/genstore"
	"github.com/unkn0wn-root/timedcache/internal/scope"
	"github.com/unkn0wn-root/timedcache/internal/wire"
	pr "github.com/unkn0wn-root/timedcache/provider"
)

type cache[V any] struct {
	ns             string
	provider       pr.Provider
	codec          c.Codec[V]
	log            Logger
	hooks          Hooks
	clock          clockwork.Clock
	enabled        bool
	coalesce       bool
	defaultTTL     time.Duration
	slowCompute    time.Duration
	computeSetCost SetCostFunc
	gen            gen.GenStore
	ownsGen        bool

	sf        singleflight.Group
	stats     counters
	closeOnce sync.Once
	closeErr  error
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("timedcache: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("timedcache: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("timedcache: namespace is required")
	}
	if opts.DefaultTTL < 0 {
		return nil, fmt.Errorf("%w: default ttl %v", ErrInvalidTTL, opts.DefaultTTL)
	}

	c := &cache[V]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		enabled:  !opts.Disabled,
		coalesce: !opts.DisableCoalescing,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.clock = coalesce[clockwork.Clock](opts.Clock, clockwork.NewRealClock())
	c.defaultTTL = coalesce(opts.DefaultTTL, defaultTTL)
	c.slowCompute = coalesce(opts.SlowCompute, defaultSlowCompute)

	if opts.ComputeSetCost != nil {
		c.computeSetCost = opts.ComputeSetCost
	} else {
		c.computeSetCost = func(string, []byte) int64 { return 1 }
	}

	if opts.GenStore != nil {
		c.gen = opts.GenStore
	} else {
		// default to in-process generations with periodic cleanup
		c.gen = gen.NewLocalGenStore(
			coalesce(opts.CleanupInterval, defaultSweep),
			coalesce(opts.GenRetention, defaultGenRetention),
			gen.WithClock(c.clock),
		)
		c.ownsGen = true
	}

	return c, nil
}

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Stats() Stats { return c.stats.snapshot() }

// Close releases the provider and, when the cache created it, the gen store.
// Calling Close more than once returns the first result.
func (c *cache[V]) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		if c.ownsGen {
			_ = c.gen.Close(ctx)
		}
		c.closeErr = c.provider.Close(ctx)
	})
	return c.closeErr
}

func (c *cache[V]) GetOrCompute(ctx context.Context, key string, fn ComputeFunc[V]) (V, error) {
	return c.GetOrComputeTTL(ctx, key, fn, c.defaultTTL)
}

func (c *cache[V]) GetOrComputeTTL(ctx context.Context, key string, fn ComputeFunc[V], ttl time.Duration) (V, error) {
	var zero V
	switch {
	case key == "":
		return zero, ErrInvalidKey
	case ttl <= 0:
		return zero, fmt.Errorf("%w: %v", ErrInvalidTTL, ttl)
	case fn == nil:
		return zero, ErrNilCompute
	}
	if !c.enabled {
		return fn(ctx)
	}

	sk := c.entryKey(key)
	scopes := c.scopeKeys(key)
	fp, snapOK := c.fingerprint(ctx, scopes)
	if snapOK {
		if v, ok := c.lookup(ctx, sk, fp); ok {
			c.stats.hits.Add(1)
			c.hooks.Hit(key)
			return v, nil
		}
	}
	c.stats.misses.Add(1)
	c.hooks.Miss(key)

	if !c.coalesce || !snapOK {
		return c.load(ctx, key, sk, scopes, fp, snapOK, fn, ttl)
	}

	// Callers sharing a flight observed the same generations, so any of them
	// may store the result. A call arriving after an invalidation gets a new
	// flight key and never joins an older computation.
	flight := sk + "@" + strconv.FormatUint(fp, 16)
	res, err, _ := c.sf.Do(flight, func() (any, error) {
		return c.load(ctx, key, sk, scopes, fp, true, fn, ttl)
	})
	if err != nil {
		return zero, err
	}
	v, _ := res.(V)
	return v, nil
}

// lookup returns the stored value for sk when it is fresh and was computed
// under fingerprint fp. Anything else is deleted and reported as a miss.
func (c *cache[V]) lookup(ctx context.Context, sk string, fp uint64) (V, bool) {
	var zero V
	raw, ok, err := c.provider.Get(ctx, sk)
	if err != nil {
		c.log.Warn("provider get failed; treating as miss", Fields{"key": sk, "err": err})
		c.hooks.ProviderError("get", sk, err)
		return zero, false
	}
	if !ok {
		return zero, false
	}

	e, err := wire.DecodeSingle(raw)
	if err != nil {
		c.selfHeal(ctx, sk, ReasonCorrupt)
		return zero, false
	}
	if !e.Fresh(c.clock.Now()) {
		c.stats.expired.Add(1)
		c.selfHeal(ctx, sk, ReasonExpired)
		return zero, false
	}
	if e.Gen != fp {
		c.selfHeal(ctx, sk, ReasonGenMismatch)
		return zero, false
	}
	v, err := c.codec.Decode(e.Payload)
	if err != nil {
		c.selfHeal(ctx, sk, ReasonValueDecode)
		return zero, false
	}
	return v, true
}

func (c *cache[V]) selfHeal(ctx context.Context, sk, reason string) {
	if err := c.provider.Del(ctx, sk); err != nil {
		c.hooks.ProviderError("del", sk, err)
	}
	c.hooks.SelfHeal(sk, reason)
}

// load runs fn and stores its result if no covering generation moved since fp
// was taken. Without a snapshot (snapOK=false) the result is returned unstored.
func (c *cache[V]) load(
	ctx context.Context,
	key, sk string,
	scopes []string,
	fp uint64,
	snapOK bool,
	fn ComputeFunc[V],
	ttl time.Duration,
) (V, error) {
	start := c.clock.Now()
	v, err := fn(ctx)
	if took := c.clock.Since(start); c.slowCompute > 0 && took >= c.slowCompute {
		c.log.Warn("slow compute", Fields{"key": key, "took": took})
		c.hooks.SlowCompute(key, took)
	}
	if err != nil {
		c.stats.computeErrors.Add(1)
		c.hooks.ComputeError(key, err)
		var zero V
		return zero, err
	}
	if snapOK {
		c.store(ctx, key, sk, scopes, fp, v, ttl)
	}
	return v, nil
}

func (c *cache[V]) store(ctx context.Context, key, sk string, scopes []string, fp uint64, v V, ttl time.Duration) {
	cur, ok := c.fingerprint(ctx, scopes)
	if !ok || cur != fp {
		// generation moved; skip stale write
		c.stats.staleSkipped.Add(1)
		c.hooks.StaleStoreSkipped(key)
		c.log.Debug("store skipped (gen moved during compute)", Fields{"key": key})
		return
	}

	payload, err := c.codec.Encode(v)
	if err != nil {
		c.log.Warn("value encode failed; not cached", Fields{"key": key, "err": err})
		return
	}
	raw := wire.EncodeSingle(wire.Entry{
		Gen:      fp,
		StoredAt: c.clock.Now(),
		TTL:      ttl,
		Payload:  payload,
	})
	ok, err = c.provider.Set(ctx, sk, raw, c.computeSetCost(sk, raw), ttl)
	if err != nil {
		c.log.Warn("provider set failed", Fields{"key": sk, "err": err})
		c.hooks.ProviderError("set", sk, err)
		return
	}
	if !ok {
		c.log.Debug("set rejected by provider (pressure)", Fields{"key": sk})
		c.hooks.ProviderSetRejected(sk)
	}
}

func (c *cache[V]) Invalidate(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if !c.enabled {
		return nil
	}
	gk := c.exactKey(key)
	sk := c.entryKey(key)

	newGen, bumpErr := c.gen.Bump(ctx, gk)
	delErr := c.provider.Del(ctx, sk)

	switch {
	case bumpErr != nil && delErr != nil:
		c.log.Error("invalidate failed: gen bump and delete", Fields{"key": key, "bumpErr": bumpErr, "delErr": delErr})
		c.hooks.InvalidateOutage(key, bumpErr, delErr)
		return &InvalidateError{Key: key, BumpErr: bumpErr, DelErr: delErr}
	case bumpErr != nil:
		// entry is gone but a compute already in flight may still store it
		c.log.Warn("gen bump failed; entry deleted", Fields{"key": key, "err": bumpErr})
		c.hooks.GenBumpError(gk, bumpErr)
		return &InvalidateError{Key: key, BumpErr: bumpErr}
	case delErr != nil:
		// the bumped generation rejects the entry on its next read
		c.log.Debug("delete failed after gen bump", Fields{"key": key, "err": delErr})
		c.hooks.ProviderError("del", sk, delErr)
	}
	c.stats.invalidations.Add(1)
	c.log.Debug("invalidated key", Fields{"key": key, "newGen": newGen})
	return nil
}

func (c *cache[V]) InvalidatePrefix(ctx context.Context, prefix string) error {
	p := scope.Normalize(prefix)
	if p == "" {
		return ErrInvalidKey
	}
	return c.bumpScope(ctx, p)
}

func (c *cache[V]) Clear(ctx context.Context) error {
	return c.bumpScope(ctx, "")
}

// bumpScope invalidates every key covered by scope p. Entries stay in the
// provider until a read rejects them or their provider TTL runs out.
func (c *cache[V]) bumpScope(ctx context.Context, p string) error {
	if !c.enabled {
		return nil
	}
	gk := c.scopeKey(p)
	newGen, err := c.gen.Bump(ctx, gk)
	if err != nil {
		c.log.Error("gen bump error", Fields{"scope": p, "err": err})
		c.hooks.GenBumpError(gk, err)
		return &InvalidateError{Key: p, BumpErr: err}
	}
	c.stats.invalidations.Add(1)
	c.log.Debug("invalidated scope", Fields{"scope": p, "newGen": newGen})
	return nil
}

// fingerprint reads the generations of scopes and folds them. ok=false means
// the gen store failed and nothing may be read from or written to the cache.
func (c *cache[V]) fingerprint(ctx context.Context, scopes []string) (uint64, bool) {
	m, err := c.gen.SnapshotMany(ctx, scopes)
	if err != nil {
		c.log.Warn("gen snapshot error; bypassing cache", Fields{"count": len(scopes), "err": err})
		c.hooks.GenSnapshotError(len(scopes), err)
		return 0, false
	}
	gens := make([]uint64, len(scopes))
	for i, s := range scopes {
		gens[i] = m[s]
	}
	return scope.Fingerprint(gens), true
}

// scopeKeys lists the generation keys that cover key: every covering scope
// plus the key's own exact generation.
func (c *cache[V]) scopeKeys(key string) []string {
	cov := scope.Covering(key)
	out := make([]string, 0, len(cov)+1)
	for _, s := range cov {
		out = append(out, c.scopeKey(s))
	}
	return append(out, c.exactKey(key))
}

func (c *cache[V]) entryKey(key string) string { return "entry:" + c.ns + ":" + key }
func (c *cache[V]) scopeKey(p string) string   { return "scope:" + c.ns + ":" + p }
func (c *cache[V]) exactKey(key string) string { return "key:" + c.ns + ":" + key }

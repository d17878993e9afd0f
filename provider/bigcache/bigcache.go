package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	pr "github.com/unkn0wn-root/timedcache/provider"
)

// Provider stores frames in BigCache. BigCache evicts by one global
// LifeWindow instead of per-entry TTLs, so an entry may be dropped before its
// frame expires (an extra miss) or linger after it (rejected on read by the
// frame's own freshness check).
type Provider struct {
	c          *bc.BigCache
	lifeWindow time.Duration
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	// LifeWindow should be at least the longest TTL the cache is used with.
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	Shards             int // power of two; 0 = BigCache default
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // 0 = unbounded
	Stats              bool
}

func New(cfg Config) (*Provider, error) {
	if cfg.LifeWindow <= 0 {
		return nil, errors.New("bigcache: life window must be positive")
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	conf.Verbose = false
	conf.StatsEnabled = cfg.Stats
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB

	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c, lifeWindow: cfg.LifeWindow}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	switch {
	case errors.Is(err, bc.ErrEntryNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return b, true, nil
}

// Set ignores cost and ttl. A frame that does not fit its shard under
// HardMaxCacheSizeMB is reported as rejected rather than as an error.
func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, _ time.Duration) (bool, error) {
	if err := p.c.Set(key, value); err != nil {
		return false, nil
	}
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	if err := p.c.Delete(key); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
		return err
	}
	return nil
}

// LifeWindow is the eviction window every entry shares.
func (p *Provider) LifeWindow() time.Duration { return p.lifeWindow }

// Len reports the number of stored frames, expired ones included until the
// next clean window.
func (p *Provider) Len() int { return p.c.Len() }

// Stats returns BigCache's hit/miss counters (zero unless Config.Stats).
func (p *Provider) Stats() bc.Stats { return p.c.Stats() }

func (p *Provider) Close(context.Context) error {
	return p.c.Close()
}

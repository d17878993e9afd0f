// Package ttlcache adapts jellydator/ttlcache as an unbounded in-process
// provider. This is the closest match to a plain process-wide map: nothing is
// evicted except by expiry or an explicit delete.
package ttlcache

import (
	"context"
	"sync"
	"time"

	tc "github.com/jellydator/ttlcache/v3"

	pr "github.com/unkn0wn-root/timedcache/provider"
)

type Provider struct {
	c    *tc.Cache[string, []byte]
	once sync.Once
	done chan struct{}
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	// Capacity bounds the number of items; 0 = unlimited.
	Capacity uint64
}

// New starts the background expiry loop; Close stops it.
func New(cfg Config) *Provider {
	opts := []tc.Option[string, []byte]{
		tc.WithDisableTouchOnHit[string, []byte](),
	}
	if cfg.Capacity > 0 {
		opts = append(opts, tc.WithCapacity[string, []byte](cfg.Capacity))
	}
	p := &Provider{
		c:    tc.New[string, []byte](opts...),
		done: make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		p.c.Start()
	}()
	return p
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	it := p.c.Get(key)
	if it == nil || it.IsExpired() {
		return nil, false, nil
	}
	return it.Value(), true, nil
}

// Set treats ttl<=0 as "no expiry". Cost is ignored.
func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = tc.NoTTL
	}
	p.c.Set(key, value, ttl)
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Delete(key)
	return nil
}

// Len reports the number of stored items, expired-but-unswept included.
func (p *Provider) Len() int { return p.c.Len() }

func (p *Provider) Close(_ context.Context) error {
	p.once.Do(func() {
		p.c.Stop()
		<-p.done
		p.c.DeleteAll()
	})
	return nil
}

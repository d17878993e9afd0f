package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/timedcache/provider"
)

var (
	ErrNilClient = errors.New("redis provider: nil client")
	// ErrNoTTL rejects writes that would leave a frame in the shared store
	// with no expiry.
	ErrNoTTL = errors.New("redis provider: ttl must be positive")
)

// Redis stores frames in a Redis instance shared by every console replica.
//
// Freshness is decided by the TTL inside the frame. The key TTL is the frame
// TTL plus Slack, so Redis never drops a frame its readers still consider
// fresh, and expired frames do not outlive their window by more than Slack.
type Redis struct {
	rdb         goredis.UniversalClient
	slack       time.Duration
	closeClient bool
	closeOnce   sync.Once
	closeErr    error
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client goredis.UniversalClient
	// Slack is added to every key TTL to absorb clock skew between replicas.
	Slack time.Duration
	// CloseClient hands ownership of Client to the provider.
	CloseClient bool
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if cfg.Slack < 0 {
		cfg.Slack = 0
	}
	return &Redis{rdb: cfg.Client, slack: cfg.Slack, closeClient: cfg.CloseClient}, nil
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, goredis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, ErrNoTTL
	}
	if err := p.rdb.Set(ctx, key, value, ttl+p.slack).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Del(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

// Close closes the client only when the provider owns it.
func (p *Redis) Close(context.Context) error {
	p.closeOnce.Do(func() {
		if p.closeClient {
			if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
				p.closeErr = err
			}
		}
	})
	return p.closeErr
}

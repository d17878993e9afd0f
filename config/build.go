package config

import (
	"context"
	"errors"
	"fmt"
	stdslog "log/slog"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/timedcache"
	"github.com/unkn0wn-root/timedcache/codec"
	"github.com/unkn0wn-root/timedcache/genstore"
	logruslog "github.com/unkn0wn-root/timedcache/log/logrus"
	slogadapter "github.com/unkn0wn-root/timedcache/log/slog"
	zaplog "github.com/unkn0wn-root/timedcache/log/zap"
	"github.com/unkn0wn-root/timedcache/provider"
	bcprov "github.com/unkn0wn-root/timedcache/provider/bigcache"
	redisprov "github.com/unkn0wn-root/timedcache/provider/redis"
	rprov "github.com/unkn0wn-root/timedcache/provider/ristretto"
	ttlprov "github.com/unkn0wn-root/timedcache/provider/ttlcache"
)

// Cache is a TimedCache built from Config. Close also releases the
// Redis client and gen store Build created.
type Cache[V any] struct {
	timedcache.TimedCache[V]
	closers []func(context.Context) error
}

func (c *Cache[V]) Close(ctx context.Context) error {
	errs := []error{c.TimedCache.Close(ctx)}
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i](ctx))
	}
	return errors.Join(errs...)
}

// BuildOption overrides parts of what Build would construct.
type BuildOption func(*buildOpts)

type buildOpts struct {
	redis  goredis.UniversalClient
	hooks  timedcache.Hooks
	logger timedcache.Logger
}

// WithRedisClient reuses an existing client instead of dialing Config.Redis.
// The caller keeps ownership.
func WithRedisClient(c goredis.UniversalClient) BuildOption {
	return func(o *buildOpts) { o.redis = c }
}

func WithHooks(h timedcache.Hooks) BuildOption {
	return func(o *buildOpts) { o.hooks = h }
}

// WithLogger replaces the logger selected by Config.Log.
func WithLogger(l timedcache.Logger) BuildOption {
	return func(o *buildOpts) { o.logger = l }
}

// Build assembles provider, gen store, codec and logger from cfg.
func Build[V any](cfg Config, opts ...BuildOption) (*Cache[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var bo buildOpts
	for _, o := range opts {
		o(&bo)
	}

	out := &Cache[V]{}
	fail := func(err error) (*Cache[V], error) {
		for i := len(out.closers) - 1; i >= 0; i-- {
			_ = out.closers[i](context.Background())
		}
		return nil, err
	}

	rdb := bo.redis
	if rdb == nil && cfg.usesRedis() {
		c, err := newRedisClient(cfg.Redis)
		if err != nil {
			return fail(err)
		}
		rdb = c
		out.closers = append(out.closers, func(context.Context) error { return c.Close() })
	}

	p, err := newProvider(cfg, rdb)
	if err != nil {
		return fail(err)
	}

	var gs genstore.GenStore
	if cfg.GenStore == GenStoreRedis {
		rgs, err := genstore.NewRedisGenStore(genstore.RedisConfig{
			Client:    rdb,
			Namespace: cfg.Namespace,
			TTL:       cfg.Redis.GenTTL,
		})
		if err != nil {
			_ = p.Close(context.Background())
			return fail(err)
		}
		gs = rgs
		out.closers = append(out.closers, rgs.Close)
	}

	cd, err := newCodec[V](cfg)
	if err != nil {
		_ = p.Close(context.Background())
		return fail(err)
	}

	logger := bo.logger
	if logger == nil {
		if logger, err = newLogger(cfg.Log); err != nil {
			_ = p.Close(context.Background())
			return fail(err)
		}
	}

	tc, err := timedcache.New(timedcache.Options[V]{
		Namespace:         cfg.Namespace,
		Provider:          p,
		Codec:             cd,
		Logger:            logger,
		Hooks:             bo.hooks,
		DefaultTTL:        cfg.TTL,
		SlowCompute:       cfg.SlowCompute,
		GenStore:          gs,
		DisableCoalescing: !cfg.Coalesce,
		Disabled:          cfg.Disabled,
		ComputeSetCost:    costFor(cfg.Provider),
	})
	if err != nil {
		_ = p.Close(context.Background())
		return fail(err)
	}
	out.TimedCache = tc
	return out, nil
}

func newRedisClient(r Redis) (*goredis.Client, error) {
	if r.URL != "" {
		o, err := goredis.ParseURL(r.URL)
		if err != nil {
			return nil, fmt.Errorf("config: redis url: %w", err)
		}
		return goredis.NewClient(o), nil
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
	}), nil
}

func newProvider(cfg Config, rdb goredis.UniversalClient) (provider.Provider, error) {
	switch cfg.Provider {
	case ProviderRistretto:
		return rprov.New(rprov.Config{
			NumCounters: cfg.Ristretto.NumCounters,
			MaxCost:     cfg.Ristretto.MaxCost,
			BufferItems: cfg.Ristretto.BufferItems,
		})
	case ProviderBigCache:
		return bcprov.New(bcprov.Config{
			LifeWindow:         cfg.BigCache.LifeWindow,
			HardMaxCacheSizeMB: cfg.BigCache.HardMaxCacheSizeMB,
		})
	case ProviderRedis:
		return redisprov.New(redisprov.Config{Client: rdb, Slack: cfg.Redis.KeySlack})
	default:
		return ttlprov.New(ttlprov.Config{Capacity: cfg.TTLCache.Capacity}), nil
	}
}

func newCodec[V any](cfg Config) (codec.Codec[V], error) {
	var cd codec.Codec[V]
	switch cfg.Codec {
	case CodecCBOR:
		c, err := codec.NewCBOR[V](codec.CBOROptions{})
		if err != nil {
			return nil, fmt.Errorf("config: cbor codec: %w", err)
		}
		cd = c
	case CodecMsgpack:
		cd = codec.Msgpack[V]{StructTag: "json"}
	default:
		cd = codec.JSON[V]{}
	}
	if cfg.MaxDecode > 0 {
		cd = codec.LimitCodec[V]{Inner: cd, MaxDecode: cfg.MaxDecode}
	}
	return cd, nil
}

func newLogger(kind string) (timedcache.Logger, error) {
	switch kind {
	case LogZap:
		l, err := zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("config: zap: %w", err)
		}
		return zaplog.New(l), nil
	case LogLogrus:
		return logruslog.New(logrus.StandardLogger()), nil
	case LogSlog:
		return slogadapter.Logger{L: stdslog.Default()}, nil
	default:
		return timedcache.NopLogger{}, nil
	}
}

// costFor charges ristretto by encoded size so MaxCost is a byte budget.
func costFor(p string) timedcache.SetCostFunc {
	if p != ProviderRistretto {
		return nil
	}
	return func(_ string, raw []byte) int64 { return int64(len(raw)) }
}

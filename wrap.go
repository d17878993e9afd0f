package timedcache

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/timedcache/keys"
)

// LoaderFunc loads the value a key describes. The key is passed through so
// one loader can serve every page, sort order and filter of an operation.
type LoaderFunc[V any] func(ctx context.Context, k keys.Key) (V, error)

// Func wraps fn so that each call is served through tc under k.String()
// with the cache's default TTL.
//
//	listServers := timedcache.Func(tc, func(ctx context.Context, k keys.Key) ([]Server, error) {
//	    return nova.List(ctx, ...)
//	})
//	servers, err := listServers(ctx, keys.New("instances").Scope(cloud).Param("page", 2))
func Func[V any](tc TimedCache[V], fn LoaderFunc[V]) LoaderFunc[V] {
	return wrap(tc, fn, 0)
}

// FuncTTL is Func with a fixed TTL per call.
func FuncTTL[V any](tc TimedCache[V], fn LoaderFunc[V], ttl time.Duration) LoaderFunc[V] {
	if ttl <= 0 {
		return func(context.Context, keys.Key) (V, error) {
			var zero V
			return zero, fmt.Errorf("%w: %v", ErrInvalidTTL, ttl)
		}
	}
	return wrap(tc, fn, ttl)
}

func wrap[V any](tc TimedCache[V], fn LoaderFunc[V], ttl time.Duration) LoaderFunc[V] {
	return func(ctx context.Context, k keys.Key) (V, error) {
		if err := k.Err(); err != nil {
			var zero V
			return zero, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		compute := func(ctx context.Context) (V, error) { return fn(ctx, k) }
		if ttl == 0 {
			return tc.GetOrCompute(ctx, k.String(), compute)
		}
		return tc.GetOrComputeTTL(ctx, k.String(), compute, ttl)
	}
}

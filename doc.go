// Package timedcache implements a process-wide read-through cache with a short,
// bounded TTL and explicit invalidation, meant to sit in front of expensive
// upstream list/describe calls (cloud inventories, cluster state) that many
// request handlers poll at the same time.
//
// Components:
//   - Provider: byte store with TTL (ttlcache by default; Ristretto, BigCache, Redis).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - GenStore: generation counters per key and per scope. Local (in-process) by
//     default, optional Redis implementation for multi-replica deployments.
//
// Keys and scopes:
//
//	instances:cloudA?page=2&sort=name
//	└───────┘ └────┘ └──────────────┘
//	   op     scope       params        (see package keys)
//
// A key is covered by the root scope, every ':'-delimited prefix of it and the
// key itself. Invalidate(key) bumps the key's own generation; InvalidatePrefix(p)
// bumps scope p; Clear bumps the root. Every stored entry carries a fingerprint
// of the generations it was computed under and is rejected on read once any of
// them moved.
//
// Read path:
//
//	v, err := cache.GetOrCompute(ctx, key, func(ctx context.Context) ([]Instance, error) {
//	    return nova.ListServers(ctx, cloud, page)
//	})
//
// Write path (after the upstream write succeeded, before responding):
//
//	_ = cache.InvalidatePrefix(ctx, keys.New("instances").Scope(cloud).Prefix())
package timedcache

// Package sloghooks reports cache events to a log/slog logger.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/timedcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitMissEvery  uint64
	SelfHealEvery uint64
	// Hit and Miss are silent unless set.
	LogHitMiss bool
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitMissCtr  atomic.Uint64
	selfHealCtr atomic.Uint64
}

var _ timedcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) hitMiss(msg, key string) {
	if h.l == nil || !h.opts.LogHitMiss || !sample(h.opts.HitMissEvery, &h.hitMissCtr) {
		return
	}
	h.l.Debug(msg, "key", h.redact(key))
}

func (h *Hooks) Hit(key string)  { h.hitMiss("timedcache.hit", key) }
func (h *Hooks) Miss(key string) { h.hitMiss("timedcache.miss", key) }

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("timedcache.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ComputeError(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("timedcache.compute_error",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) SlowCompute(key string, took time.Duration) {
	if h.l == nil {
		return
	}
	h.l.Warn("timedcache.slow_compute",
		"key", h.redact(key),
		"took", took)
}

func (h *Hooks) StaleStoreSkipped(key string) {
	if h.l == nil {
		return
	}
	h.l.Debug("timedcache.stale_store_skipped", "key", h.redact(key))
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("timedcache.provider_set_rejected", "key", h.redact(storageKey))
}

func (h *Hooks) ProviderError(op, storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("timedcache.provider_error",
		"op", op,
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) GenSnapshotError(count int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("timedcache.gen_snapshot_error",
		"count", count,
		"err", err)
}

func (h *Hooks) GenBumpError(scopeKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("timedcache.gen_bump_error",
		"scope", h.redact(scopeKey),
		"err", err)
}

func (h *Hooks) InvalidateOutage(key string, bumpErr, delErr error) {
	if h.l == nil {
		return
	}
	h.l.Error("timedcache.invalidate_outage",
		"key", h.redact(key),
		"bump_err", bumpErr,
		"del_err", delErr)
}

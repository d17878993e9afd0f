package timedcache

import "time"

// Fields carries structured context for a log line.
type Fields map[string]any

// Logger is the structured logger the cache writes to. Adapters for zap,
// logrus and log/slog live under log/.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// Self-heal reasons.
const (
	ReasonCorrupt     = "corrupt"
	ReasonExpired     = "expired"
	ReasonGenMismatch = "gen_mismatch"
	ReasonValueDecode = "value_decode"
)

// Hooks are callbacks for cache events.
// Implementations MUST be cheap and non-blocking: Hit and Miss run on every read.
// Wrap slow sinks with hooks/async.
type Hooks interface {
	Hit(key string)
	Miss(key string)

	// A stored entry was deleted on read.
	// reason ∈ {"corrupt", "expired", "gen_mismatch", "value_decode"}
	SelfHeal(storageKey, reason string)

	// The compute func failed; nothing was stored.
	ComputeError(key string, err error)
	// The compute func took at least Options.SlowCompute.
	SlowCompute(key string, took time.Duration)
	// A computed value was not stored because an invalidation raced it.
	StaleStoreSkipped(key string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)
	// Provider Get/Set/Del failed. op ∈ {"get", "set", "del"}
	ProviderError(op, storageKey string, err error)

	// GenStore errors (snapshot or bump).
	GenSnapshotError(count int, err error)
	GenBumpError(scopeKey string, err error)

	// Both gen bump and delete failed during Invalidate (likely backend outage).
	InvalidateOutage(key string, bumpErr, delErr error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                            {}
func (NopHooks) Miss(string)                           {}
func (NopHooks) SelfHeal(string, string)               {}
func (NopHooks) ComputeError(string, error)            {}
func (NopHooks) SlowCompute(string, time.Duration)     {}
func (NopHooks) StaleStoreSkipped(string)              {}
func (NopHooks) ProviderSetRejected(string)            {}
func (NopHooks) ProviderError(string, string, error)   {}
func (NopHooks) GenSnapshotError(int, error)           {}
func (NopHooks) GenBumpError(string, error)            {}
func (NopHooks) InvalidateOutage(string, error, error) {}

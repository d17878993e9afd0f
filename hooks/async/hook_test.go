package asynchook

import (
	"sync"
	"testing"

	"github.com/unkn0wn-root/timedcache"
)

type countHooks struct {
	timedcache.NopHooks
	mu    sync.Mutex
	hits  int
	block chan struct{}
}

func (c *countHooks) Hit(string) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func TestDeliversBeforeClose(t *testing.T) {
	inner := &countHooks{}
	h := New(inner, 2, 16)
	for i := 0; i < 10; i++ {
		h.Hit("k")
	}
	h.Close()
	if inner.hits != 10 {
		t.Fatalf("delivered %d, want 10", inner.hits)
	}
	if h.Dropped() != 0 {
		t.Fatalf("dropped %d", h.Dropped())
	}
}

func TestDropsWhenFull(t *testing.T) {
	inner := &countHooks{block: make(chan struct{})}
	h := New(inner, 1, 1)

	// worker may hold one event while blocked, queue holds one more
	for i := 0; i < 10; i++ {
		h.Hit("k")
	}
	close(inner.block)
	h.Close()

	if inner.hits+int(h.Dropped()) != 10 {
		t.Fatalf("hits=%d dropped=%d, want total 10", inner.hits, h.Dropped())
	}
	if h.Dropped() < 8 {
		t.Fatalf("dropped %d, want at least 8", h.Dropped())
	}
}

func TestEventsAfterCloseDropped(t *testing.T) {
	inner := &countHooks{}
	h := New(inner, 1, 4)
	h.Close()
	h.Close()
	h.Miss("k")
	h.InvalidateOutage("k", nil, nil)
	if h.Dropped() != 2 {
		t.Fatalf("dropped %d, want 2", h.Dropped())
	}
}

package keys

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type kind string

func TestStringLayout(t *testing.T) {
	cases := []struct {
		name string
		key  Key
		want string
	}{
		{"op_only", New("clouds"), "clouds"},
		{"scope", New("instances").Scope("cloudA", 1), "instances:cloudA:1"},
		{"params_sorted", New("instances").Scope("cloudA").Param("sort", "name").Param("page", 2), "instances:cloudA?page=2&sort=name"},
		{"named_type", New("list").Scope(kind("volumes")), "list:volumes"},
		{"bool_and_float", New("net").Param("admin", true).Param("ratio", 0.5), "net?admin=true&ratio=0.5"},
		{"nil_param_unset", New("vol").Param("status", nil), "vol"},
		{"time_utc", New("snap").Param("since", time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))), "snap?since=2025-01-02T02%3A04%3A05Z"},
		{"duration", New("poll").Param("every", 1500*time.Millisecond), "poll?every=1.5s"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.key.Err(); err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got := tc.key.String(); got != tc.want {
				t.Fatalf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParamOrderIndependent(t *testing.T) {
	a := New("instances").Scope("cloudA").Param("page", 1).Param("sort", "name").Param("status", "ACTIVE")
	b := New("instances").Scope("cloudA").Param("status", "ACTIVE").Param("sort", "name").Param("page", 1)
	c := New("instances").Scope("cloudA").Params(map[string]any{"sort": "name", "status": "ACTIVE", "page": 1})
	if a.String() != b.String() || a.String() != c.String() {
		t.Fatalf("keyword order changed the key: %q / %q / %q", a, b, c)
	}
}

func TestDifferentInputsDifferentKeys(t *testing.T) {
	base := New("instances").Scope("cloudA").Param("page", 1)
	variants := []Key{
		New("volumes").Scope("cloudA").Param("page", 1),
		New("instances").Scope("cloudB").Param("page", 1),
		New("instances").Scope("cloudA").Param("page", 2),
		New("instances").Scope("cloudA").Param("page", 1).Param("sort", "name"),
		New("instances").Scope("cloudA").Param("page", "1x"),
		New("instances").Scope("cloudA", "1"),
	}
	seen := map[string]bool{base.String(): true}
	for _, v := range variants {
		s := v.String()
		if seen[s] {
			t.Fatalf("key collision on %q", s)
		}
		seen[s] = true
	}
}

func TestEscapingPreventsBoundaryForgery(t *testing.T) {
	forged := New("instances").Scope("cloudA:page1").String()
	real := New("instances").Scope("cloudA", "page1").String()
	if forged == real {
		t.Fatalf("':' inside a segment must not create a scope boundary")
	}
	if strings.Count(forged, ":") != 1 {
		t.Fatalf("expected a single separator, got %q", forged)
	}
	q := New("instances").Param("search", "a&page=9").String()
	if strings.Count(q, "&") != 0 || strings.Count(q, "=") != 1 {
		t.Fatalf("param value leaked separators: %q", q)
	}
}

func TestPrefix(t *testing.T) {
	k := New("instances").Scope("cloudA").Param("page", 3)
	if got := k.Prefix(); got != "instances:cloudA" {
		t.Fatalf("Prefix() = %q", got)
	}
	if !strings.HasPrefix(k.String(), k.Prefix()) {
		t.Fatalf("key %q must start with its prefix", k)
	}
}

func TestCompositeValues(t *testing.T) {
	a := New("instances").Param("ids", []string{"i-1", "i-2"})
	b := New("instances").Param("ids", []string{"i-1", "i-2"})
	c := New("instances").Param("ids", []string{"i-2", "i-1"})
	if a.Err() != nil {
		t.Fatalf("unexpected err: %v", a.Err())
	}
	if a.String() != b.String() {
		t.Fatalf("equal slices must hash equally")
	}
	if a.String() == c.String() {
		t.Fatalf("slice order is significant")
	}
	if !strings.Contains(a.String(), "ids=@") {
		t.Fatalf("expected hashed composite marker, got %q", a)
	}

	m1 := New("k8s").Param("labels", map[string]string{"app": "web", "tier": "front"})
	m2 := New("k8s").Param("labels", map[string]string{"tier": "front", "app": "web"})
	if m1.String() != m2.String() {
		t.Fatalf("map iteration order must not change the key")
	}

	lit := New("instances").Param("ids", "@"+strings.Repeat("0", 16))
	if strings.Contains(lit.String(), "ids=@") {
		t.Fatalf("literal '@' must be escaped: %q", lit)
	}
}

func TestErrors(t *testing.T) {
	if err := New("").Err(); !errors.Is(err, ErrEmptyOp) {
		t.Fatalf("expected ErrEmptyOp, got %v", err)
	}
	if s := New("").Scope("x").String(); s != "" {
		t.Fatalf("invalid key must render empty, got %q", s)
	}
	if err := New("op").Param("", 1).Err(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := New("op").Scope(nil).Err(); err == nil {
		t.Fatalf("expected error for nil scope segment")
	}
	if err := New("op").Param("ch", make(chan int)).Err(); err == nil {
		t.Fatalf("expected error for unencodable value")
	}
	// first error sticks
	k := New("op").Param("", 1).Scope("a")
	if !errors.Is(k.Err(), ErrEmptyName) || k.String() != "" {
		t.Fatalf("builder must keep the first error")
	}
}

func TestBuilderIsImmutable(t *testing.T) {
	base := New("instances").Scope("cloudA")
	p1 := base.Param("page", 1)
	_ = base.Scope("extra")
	if base.String() != "instances:cloudA" {
		t.Fatalf("base mutated: %q", base)
	}
	if p1.String() != "instances:cloudA?page=1" {
		t.Fatalf("derived key mutated: %q", p1)
	}
}

package scope

import (
	"reflect"
	"testing"
)

func TestCovering(t *testing.T) {
	cases := []struct {
		key  string
		want []string
	}{
		{"instances", []string{"", "instances"}},
		{"instances:cloudA:page1", []string{"", "instances", "instances:cloudA", "instances:cloudA:page1"}},
		{"instances:cloudA?page=2&sort=name", []string{"", "instances", "instances:cloudA", "instances:cloudA?page=2&sort=name"}},
		{"vol?filter=a:b", []string{"", "vol", "vol?filter=a:b"}},
		{":lead", []string{"", ":lead"}},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			if got := Covering(tc.key); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Covering(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestCoveringDoesNotMatchPartialSegment(t *testing.T) {
	for _, s := range Covering("instances:cloudAB:page1") {
		if s == "instances:cloudA" {
			t.Fatalf("partial segment must not be a covering scope")
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("instances:cloudA::"); got != "instances:cloudA" {
		t.Fatalf("Normalize = %q", got)
	}
	if got := Normalize(":"); got != "" {
		t.Fatalf("Normalize(\":\") = %q, want empty", got)
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	base := Fingerprint([]uint64{0, 0, 0})
	if base != Fingerprint([]uint64{0, 0, 0}) {
		t.Fatalf("fingerprint not deterministic")
	}
	seen := map[uint64][]uint64{base: {0, 0, 0}}
	for _, v := range [][]uint64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 0}, {0, 0, 2}} {
		fp := Fingerprint(v)
		if prev, dup := seen[fp]; dup {
			t.Fatalf("fingerprint collision between %v and %v", prev, v)
		}
		seen[fp] = v
	}
}

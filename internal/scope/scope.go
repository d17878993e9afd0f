package scope

import (
	"encoding/binary"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	// Sep separates scope segments inside a key.
	Sep = ':'
	// ParamSep starts the parameter section of a key. No scope boundary
	// exists after it.
	ParamSep = '?'
)

// Covering returns every scope that contains key, outermost first: the root
// scope "", each prefix ending right before a segment separator, and key itself.
//
//	Covering("instances:cloudA?page=2") => ["", "instances", "instances:cloudA", "instances:cloudA?page=2"]
func Covering(key string) []string {
	out := make([]string, 0, 4)
	out = append(out, "")
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c != Sep && c != ParamSep {
			continue
		}
		if i > 0 {
			out = append(out, key[:i])
		}
		if c == ParamSep {
			break
		}
	}
	return append(out, key)
}

// Normalize strips trailing segment separators so "a:b:" and "a:b" name the same scope.
func Normalize(prefix string) string {
	return strings.TrimRight(prefix, string(Sep))
}

// Fingerprint folds an ordered generation vector into one value. Any change
// of any member changes the fingerprint (up to 64-bit hash collisions).
func Fingerprint(gens []uint64) uint64 {
	d := xxhash.New()
	var u8 [8]byte
	for _, g := range gens {
		binary.BigEndian.PutUint64(u8[:], g)
		_, _ = d.Write(u8[:])
	}
	return d.Sum64()
}

// Package keys derives cache keys from an operation name, its scope and its
// filter/pagination parameters.
//
// Layout:
//
//	<op>[:<scope>...][?<name>=<value>&...]
//
// Scope segments are the units InvalidatePrefix works on, so put the things a
// write invalidates as a group (resource kind, cloud) in the scope and
// everything else (page, sort, filters) in params. Params are sorted by name,
// so keyword order never changes the key. Every component is query-escaped,
// which keeps user input from forging ':' or '?' boundaries.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/unkn0wn-root/timedcache/codec"
)

var (
	ErrEmptyOp   = errors.New("keys: empty operation")
	ErrEmptyName = errors.New("keys: empty parameter name")
)

// composite values (slices, maps, structs) are hashed over their canonical CBOR form.
var canonical = codec.MustCBOR[any](codec.CBOROptions{Deterministic: true})

// compositeMark never survives query escaping, so a hashed value can't
// collide with a plain string.
const compositeMark = "@"

// Key is an immutable key builder. The zero value is invalid; start with New.
type Key struct {
	op     string
	scope  []string
	params map[string]string
	err    error
}

func New(op string) Key {
	k := Key{op: op}
	if op == "" {
		k.err = ErrEmptyOp
	}
	return k
}

// Scope appends scope segments. Nil segments are rejected.
func (k Key) Scope(segs ...any) Key {
	if k.err != nil {
		return k
	}
	scope := make([]string, len(k.scope), len(k.scope)+len(segs))
	copy(scope, k.scope)
	for _, s := range segs {
		if isNil(s) {
			k.err = fmt.Errorf("keys: nil scope segment in %q", k.op)
			return k
		}
		v, err := format(s)
		if err != nil {
			k.err = err
			return k
		}
		scope = append(scope, v)
	}
	k.scope = scope
	return k
}

// Param sets a named parameter; a later call with the same name wins.
// A nil value leaves the parameter unset.
func (k Key) Param(name string, v any) Key {
	if k.err != nil {
		return k
	}
	if name == "" {
		k.err = ErrEmptyName
		return k
	}
	params := make(map[string]string, len(k.params)+1)
	for n, pv := range k.params {
		params[n] = pv
	}
	if isNil(v) {
		delete(params, name)
		k.params = params
		return k
	}
	s, err := format(v)
	if err != nil {
		k.err = err
		return k
	}
	params[name] = s
	k.params = params
	return k
}

// Params sets every entry of m, see Param.
func (k Key) Params(m map[string]any) Key {
	for name, v := range m {
		k = k.Param(name, v)
	}
	return k
}

// Err reports the first construction error.
func (k Key) Err() error { return k.err }

// Prefix is the key without parameters: the scope to hand to InvalidatePrefix.
// It returns "" for an invalid key.
func (k Key) Prefix() string {
	if k.err != nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(url.QueryEscape(k.op))
	for _, s := range k.scope {
		b.WriteByte(':')
		b.WriteString(s)
	}
	return b.String()
}

// String renders the full key. It returns "" for an invalid key, which the
// cache rejects as an invalid argument.
func (k Key) String() string {
	p := k.Prefix()
	if p == "" || len(k.params) == 0 {
		return p
	}
	names := make([]string, 0, len(k.params))
	for n := range k.params {
		names = append(names, n)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(p)
	for i, n := range names {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(n))
		b.WriteByte('=')
		b.WriteString(k.params[n])
	}
	return b.String()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// format renders one value in escaped form.
func format(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return url.QueryEscape(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(x).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(x).Uint(), 10), nil
	case float32:
		return url.QueryEscape(strconv.FormatFloat(float64(x), 'g', -1, 32)), nil
	case float64:
		return url.QueryEscape(strconv.FormatFloat(x, 'g', -1, 64)), nil
	case time.Time:
		return url.QueryEscape(x.UTC().Format(time.RFC3339Nano)), nil
	case time.Duration:
		return url.QueryEscape(x.String()), nil
	case fmt.Stringer:
		return url.QueryEscape(x.String()), nil
	}
	if s, ok := named(v); ok {
		return url.QueryEscape(s), nil
	}
	return hashComposite(v)
}

// named handles defined types over basic kinds (e.g. type Kind string).
func named(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	}
	return "", false
}

func hashComposite(v any) (string, error) {
	b, err := canonical.Encode(v)
	if err != nil {
		return "", fmt.Errorf("keys: cannot derive key from %T: %w", v, err)
	}
	sum := sha256.Sum256(b)
	return compositeMark + hex.EncodeToString(sum[:8]), nil
}

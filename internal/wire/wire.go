package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version    byte = 1
	kindSingle byte = 1

	// magic(4) | ver(1) | kind(1) | gen(8) | storedAt(8) | ttl(8) | vlen(4)
	headerLen = 4 + 1 + 1 + 8 + 8 + 8 + 4
)

var (
	ErrCorrupt = errors.New("timedcache: corrupt entry")
	magic4     = [...]byte{'T', 'M', 'D', 'C'}
)

// Entry is the decoded form of a stored cache entry.
// Payload aliases the buffer it was decoded from.
type Entry struct {
	Gen      uint64
	StoredAt time.Time
	TTL      time.Duration
	Payload  []byte
}

// Fresh reports whether the entry is still inside its TTL window at now.
// An entry whose age equals its TTL is already expired. Decoded entries carry
// no monotonic reading, so a negative age (wall clock stepped back) counts as
// expired too.
func (e Entry) Fresh(now time.Time) bool {
	if e.TTL <= 0 {
		return false
	}
	age := now.Sub(e.StoredAt)
	return age >= 0 && age < e.TTL
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Single: magic(4) | ver(1) | kind(1=single) | gen(u64 be) | storedAt(i64 be, unix ns) |
// ttl(i64 be, ns) | vlen(u32 be) | payload(vlen)
func EncodeSingle(e Entry) []byte {
	var buf bytes.Buffer
	buf.Grow(headerLen + len(e.Payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindSingle)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], e.Gen)
	buf.Write(u8[:])

	binary.BigEndian.PutUint64(u8[:], uint64(e.StoredAt.UnixNano()))
	buf.Write(u8[:])

	binary.BigEndian.PutUint64(u8[:], uint64(e.TTL))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(e.Payload)))
	buf.Write(u4[:])

	buf.Write(e.Payload)
	return buf.Bytes()
}

// DecodeSingle parses a frame produced by EncodeSingle. Framing is strict:
// a bad header, a short buffer or trailing bytes all yield ErrCorrupt.
func DecodeSingle(b []byte) (Entry, error) {
	if len(b) < headerLen || !hasMagic(b) || b[4] != version || b[5] != kindSingle {
		return Entry{}, ErrCorrupt
	}

	off := 6

	gen := binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	storedAt := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	ttl := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8
	if ttl <= 0 {
		return Entry{}, ErrCorrupt
	}

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen != len(b)-off {
		return Entry{}, ErrCorrupt
	}

	return Entry{
		Gen:      gen,
		StoredAt: time.Unix(0, storedAt),
		TTL:      time.Duration(ttl),
		Payload:  b[off : off+vlen],
	}, nil
}

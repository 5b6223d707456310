package arena

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"

	"github.com/pavanmanishd/memkit/internal/sizes"
)

// GuardMode selects how much guard material surrounds each arena payload.
type GuardMode uint8

const (
	// GuardNone stores only the recorded size in front of the payload.
	GuardNone GuardMode = iota
	// GuardBasic adds a front magic before the size and a back magic after
	// the payload.
	GuardBasic
	// GuardStrict additionally places a second front magic between the size
	// and the payload, so underruns hit magic before the recorded size.
	GuardStrict
)

const (
	FrontMagic  uint64 = 0xF00DFACE5AFEC0DE
	SecondMagic uint64 = 0x5EC0DF00DFACEC0D
	BackMagic   uint64 = 0xB0BAC0DECAFEBABE

	wordSize = 8
)

func (m GuardMode) String() string {
	switch m {
	case GuardNone:
		return "none"
	case GuardBasic:
		return "basic"
	case GuardStrict:
		return "strict"
	}
	return fmt.Sprintf("GuardMode(%d)", uint8(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m GuardMode) MarshalText() ([]byte, error) {
	if m > GuardStrict {
		return nil, fmt.Errorf("arena: unknown guard mode %d", uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *GuardMode) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "none", "off", "false":
		*m = GuardNone
	case "basic", "on", "true":
		*m = GuardBasic
	case "strict":
		*m = GuardStrict
	default:
		return fmt.Errorf("arena: unknown guard mode %q", b)
	}
	return nil
}

// CorruptionError reports guard material or chain links that no longer hold
// the values written by the arena. It is raised with panic: the memory it
// describes has already been overwritten.
type CorruptionError struct {
	What string
	Want uint64
	Got  uint64
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("arena: corrupted %s: want %#x, got %#x", e.What, e.Want, e.Got)
}

// Codec lays out the size header and guard words around a payload. It only
// transforms bytes; it never allocates.
type Codec struct {
	Mode GuardMode
}

// HeaderSize is the number of bytes written in front of the payload.
func (c Codec) HeaderSize() int {
	switch c.Mode {
	case GuardBasic:
		return 2 * wordSize
	case GuardStrict:
		return 3 * wordSize
	}
	return wordSize
}

// TrailerSize is the number of bytes written after the payload.
func (c Codec) TrailerSize() int {
	if c.Mode == GuardNone {
		return 0
	}
	return wordSize
}

// Required returns the region size Encode needs for a payload of size bytes,
// or -1 when that would exceed sizes.MaxAlloc. Empty payloads still get one
// addressable byte so their position inside the region is recoverable.
func (c Codec) Required(size int) int {
	if size < 0 {
		return -1
	}
	extra := c.HeaderSize() + c.TrailerSize()
	if size == 0 && c.TrailerSize() == 0 {
		extra++
	}
	if size > sizes.MaxAlloc-extra {
		return -1
	}
	return size + extra
}

// Overhead is Required(size) minus size: the dry-run cost of the header.
func (c Codec) Overhead(size int) int {
	r := c.Required(size)
	if r < 0 {
		return -1
	}
	return r - size
}

// Encode writes the header and trailer for a payload of size bytes into
// region and returns the payload. region must hold at least Required(size)
// bytes.
func (c Codec) Encode(region []byte, size int) []byte {
	h := c.HeaderSize()
	le := binary.LittleEndian
	switch c.Mode {
	case GuardNone:
		le.PutUint64(region[0:], uint64(size))
	case GuardBasic:
		le.PutUint64(region[0:], FrontMagic)
		le.PutUint64(region[wordSize:], uint64(size))
	case GuardStrict:
		le.PutUint64(region[0:], FrontMagic)
		le.PutUint64(region[wordSize:], uint64(size))
		le.PutUint64(region[2*wordSize:], SecondMagic)
	}
	if c.TrailerSize() > 0 {
		le.PutUint64(region[h+size:], BackMagic)
	}
	return region[h : h+size : h+sizes.Max(size, 1)]
}

// Decode recovers the recorded size of a payload returned by Encode and
// verifies every guard word around it.
func (c Codec) Decode(payload []byte) (int, error) {
	p := unsafe.Pointer(unsafe.SliceData(payload))
	if p == nil {
		return 0, &CorruptionError{What: "payload address"}
	}
	h := c.HeaderSize()
	hdr := unsafe.Slice((*byte)(unsafe.Add(p, -h)), h)
	le := binary.LittleEndian

	var raw uint64
	switch c.Mode {
	case GuardNone:
		raw = le.Uint64(hdr)
	case GuardBasic, GuardStrict:
		if got := le.Uint64(hdr); got != FrontMagic {
			return 0, &CorruptionError{What: "front guard", Want: FrontMagic, Got: got}
		}
		raw = le.Uint64(hdr[wordSize:])
		if c.Mode == GuardStrict {
			if got := le.Uint64(hdr[2*wordSize:]); got != SecondMagic {
				return 0, &CorruptionError{What: "second front guard", Want: SecondMagic, Got: got}
			}
		}
	}
	if raw > uint64(sizes.Max(cap(payload), 1)) {
		return 0, &CorruptionError{What: "recorded size", Want: uint64(cap(payload)), Got: raw}
	}
	size := int(raw)
	if c.TrailerSize() > 0 {
		tr := unsafe.Slice((*byte)(unsafe.Add(p, size)), wordSize)
		if got := le.Uint64(tr); got != BackMagic {
			return 0, &CorruptionError{What: "back guard", Want: BackMagic, Got: got}
		}
	}
	return size, nil
}

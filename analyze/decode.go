// Package analyze decodes captured bytes into fixed-width integer and
// float interpretations at a cursor position.
package analyze

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// Endianness selects the byte order for multi-byte interpretations.
type Endianness int

const (
	Little Endianness = iota
	Big
)

func (e Endianness) String() string {
	if e == Big {
		return "Big"
	}
	return "Little"
}

// Toggle returns the opposite byte order.
func (e Endianness) Toggle() Endianness {
	if e == Big {
		return Little
	}
	return Big
}

// Interpretation is one decoded view of the bytes at the cursor.
type Interpretation struct {
	Label string
	Value string
}

// Decode interprets the bytes of data starting at cursor as fixed-width
// values. Wider interpretations appear only when enough bytes remain
// after the cursor. The eight-byte tier is always read little-endian.
// A cursor outside the data yields nil.
func Decode(data []byte, cursor int, order Endianness) []Interpretation {
	if cursor < 0 || cursor >= len(data) {
		return nil
	}

	byteOrder := binary.ByteOrder(binary.LittleEndian)
	if order == Big {
		byteOrder = binary.BigEndian
	}

	b := data[cursor]
	items := []Interpretation{
		{Label: "binary", Value: fmt.Sprintf("%08b", b)},
		{Label: "u8", Value: strconv.FormatUint(uint64(b), 10)},
	}

	rest := data[cursor:]
	if len(rest) >= 2 {
		v := byteOrder.Uint16(rest)
		items = append(items,
			Interpretation{Label: "u16", Value: strconv.FormatUint(uint64(v), 10)},
			Interpretation{Label: "i16", Value: strconv.FormatInt(int64(int16(v)), 10)},
		)
	}
	if len(rest) >= 4 {
		v := byteOrder.Uint32(rest)
		items = append(items,
			Interpretation{Label: "u32", Value: strconv.FormatUint(uint64(v), 10)},
			Interpretation{Label: "i32", Value: strconv.FormatInt(int64(int32(v)), 10)},
			Interpretation{Label: "f32", Value: strconv.FormatFloat(float64(math.Float32frombits(v)), 'g', -1, 32)},
		)
	}
	if len(rest) >= 8 {
		v := binary.LittleEndian.Uint64(rest)
		items = append(items,
			Interpretation{Label: "u64", Value: strconv.FormatUint(v, 10)},
			Interpretation{Label: "i64", Value: strconv.FormatInt(int64(v), 10)},
			Interpretation{Label: "f64", Value: strconv.FormatFloat(math.Float64frombits(v), 'g', -1, 64)},
		)
	}
	return items
}

// ClampCursor keeps a cursor inside a buffer of the given length. An
// empty buffer pins the cursor at zero.
func ClampCursor(cursor, length int) int {
	if length <= 0 || cursor < 0 {
		return 0
	}
	if cursor >= length {
		return length - 1
	}
	return cursor
}

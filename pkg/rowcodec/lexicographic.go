package rowcodec

import (
	"fmt"
	"math"
)

// LexicographicCodec is the concrete Codec this repository ships. Each
// encoding starts with a one-byte type tag (so ranges over mixed-typed
// data never compare equal across types) followed by a payload whose
// byte order matches the value's logical order.
type LexicographicCodec struct{}

const (
	tagVarchar   byte = 1
	tagBigint    byte = 2
	tagDouble    byte = 3
	tagBoolean   byte = 4
	tagTimestamp byte = 5
)

func (LexicographicCodec) Encode(t Type, v Value) ([]byte, error) {
	if t.Kind == Array {
		return nil, fmt.Errorf("rowcodec: Encode called with array type %s, use ArrayElements", t)
	}
	if v.Kind != t.Kind {
		return nil, &ErrKindMismatch{Expected: t.Kind, Got: v.Kind}
	}
	switch t.Kind {
	case Varchar:
		return append([]byte{tagVarchar}, encodeBytesAscending(v.Str)...), nil
	case Bigint:
		return append([]byte{tagBigint}, encodeInt64(v.I64)...), nil
	case Double:
		return append([]byte{tagDouble}, encodeFloat64(v.F64)...), nil
	case Boolean:
		b := byte(0)
		if v.Bool {
			b = 1
		}
		return []byte{tagBoolean, b}, nil
	case Timestamp:
		return append([]byte{tagTimestamp}, encodeInt64(v.I64)...), nil
	default:
		return nil, fmt.Errorf("rowcodec: unsupported type %s", t)
	}
}

func (c LexicographicCodec) ArrayElements(t Type, v Value) ([][]byte, error) {
	if t.Kind != Array {
		return nil, fmt.Errorf("rowcodec: ArrayElements called with non-array type %s", t)
	}
	if v.Kind != Array {
		return nil, &ErrKindMismatch{Expected: Array, Got: v.Kind}
	}

	elemType := ScalarType(t.Elem)
	seen := make(map[string]struct{}, len(v.Arr))
	out := make([][]byte, 0, len(v.Arr))
	for _, elem := range v.Arr {
		b, err := c.Encode(elemType, elem)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[string(b)]; dup {
			continue
		}
		seen[string(b)] = struct{}{}
		out = append(out, b)
	}
	return out, nil
}

// encodeInt64 flips the sign bit so that big-endian byte order matches
// signed numeric order: negative numbers sort before non-negative ones.
func encodeInt64(v int64) []byte {
	u := uint64(v) ^ (1 << 63)
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(u)
		u >>= 8
	}
	return b
}

// encodeFloat64 produces an order-preserving encoding: for non-negative
// floats, set the sign bit; for negative floats, flip every bit. This is
// the standard IEEE-754 total-ordering trick used by most ordered KV
// encoders.
func encodeFloat64(f float64) []byte {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(bits)
		bits >>= 8
	}
	return b
}

// encodeBytesAscending escapes 0x00 bytes as 0x00 0xFF and terminates
// with 0x00 0x01, so that no encoding is a prefix of another and plain
// byte comparison matches string order (CockroachDB util/encoding's
// EncodeBytesAscending scheme).
func encodeBytesAscending(s string) []byte {
	out := make([]byte, 0, len(s)+2)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == 0x00 {
			out = append(out, 0x00, 0xFF)
		} else {
			out = append(out, c)
		}
	}
	out = append(out, 0x00, 0x01)
	return out
}

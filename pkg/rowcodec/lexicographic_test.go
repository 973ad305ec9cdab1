package rowcodec

import (
	"bytes"
	"sort"
	"testing"
)

func TestEncodeOrderPreservingBigint(t *testing.T) {
	c := LexicographicCodec{}
	values := []int64{-1000, -1, 0, 1, 42, 1 << 40}
	var encoded [][]byte
	for _, v := range values {
		b, err := c.Encode(ScalarType(Bigint), BigintValue(v))
		if err != nil {
			t.Fatalf("encode(%d): %v", v, err)
		}
		encoded = append(encoded, b)
	}
	for i := 1; i < len(encoded); i++ {
		if bytes.Compare(encoded[i-1], encoded[i]) >= 0 {
			t.Fatalf("encoding for %d is not ordered before %d", values[i-1], values[i])
		}
	}
}

func TestEncodeOrderPreservingDouble(t *testing.T) {
	c := LexicographicCodec{}
	values := []float64{-3.5, -0.001, 0, 0.001, 2.25, 100.0}
	var encoded [][]byte
	for _, v := range values {
		b, err := c.Encode(ScalarType(Double), DoubleValue(v))
		if err != nil {
			t.Fatalf("encode(%v): %v", v, err)
		}
		encoded = append(encoded, b)
	}
	for i := 1; i < len(encoded); i++ {
		if bytes.Compare(encoded[i-1], encoded[i]) >= 0 {
			t.Fatalf("encoding for %v is not ordered before %v", values[i-1], values[i])
		}
	}
}

func TestEncodeOrderPreservingVarchar(t *testing.T) {
	c := LexicographicCodec{}
	words := []string{"alice", "bob", "carol", "zzz"}
	shuffled := append([]string{}, words...)
	sort.Strings(shuffled)

	var encoded [][]byte
	for _, w := range shuffled {
		b, err := c.Encode(ScalarType(Varchar), VarcharValue(w))
		if err != nil {
			t.Fatalf("encode(%q): %v", w, err)
		}
		encoded = append(encoded, b)
	}
	for i := 1; i < len(encoded); i++ {
		if bytes.Compare(encoded[i-1], encoded[i]) >= 0 {
			t.Fatalf("encoding for %q is not ordered before %q", shuffled[i-1], shuffled[i])
		}
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	c := LexicographicCodec{}
	cases := []struct {
		typ Type
		val Value
	}{
		{ScalarType(Varchar), VarcharValue("hello\x00world")},
		{ScalarType(Bigint), BigintValue(-42)},
		{ScalarType(Double), DoubleValue(-3.25)},
		{ScalarType(Boolean), BooleanValue(true)},
		{ScalarType(Timestamp), TimestampValue(1700000000000)},
	}
	for _, tc := range cases {
		b, err := c.Encode(tc.typ, tc.val)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := c.Decode(tc.typ, b)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Str != tc.val.Str || got.I64 != tc.val.I64 || got.F64 != tc.val.F64 || got.Bool != tc.val.Bool {
			t.Fatalf("round trip mismatch: got %+v want %+v", got, tc.val)
		}
	}
}

func TestArrayElementsDistinctAndOrderPreserving(t *testing.T) {
	c := LexicographicCodec{}
	arrType := ArrayType(Varchar)
	v := ArrayValue([]Value{
		VarcharValue("abc"),
		VarcharValue("def"),
		VarcharValue("ghi"),
		VarcharValue("abc"), // duplicate, must be dropped
	})

	elems, err := c.ArrayElements(arrType, v)
	if err != nil {
		t.Fatalf("ArrayElements: %v", err)
	}
	if len(elems) != 3 {
		t.Fatalf("expected 3 distinct elements, got %d", len(elems))
	}

	want, _ := c.Encode(ScalarType(Varchar), VarcharValue("abc"))
	if !bytes.Equal(elems[0], want) {
		t.Fatalf("first element mismatch")
	}
}

func TestArrayElementsRejectsNonArrayType(t *testing.T) {
	c := LexicographicCodec{}
	if _, err := c.ArrayElements(ScalarType(Varchar), VarcharValue("x")); err == nil {
		t.Fatal("expected error for non-array type")
	}
}

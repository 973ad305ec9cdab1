package rowcodec

// Value is a tagged logical value matching one of the Kind constants.
// Only the field matching Kind is meaningful.
type Value struct {
	Kind Kind
	Str  string
	I64  int64
	F64  float64
	Bool bool
	Arr  []Value // element Kind is the array column's Elem
}

func VarcharValue(s string) Value    { return Value{Kind: Varchar, Str: s} }
func BigintValue(n int64) Value      { return Value{Kind: Bigint, I64: n} }
func DoubleValue(f float64) Value    { return Value{Kind: Double, F64: f} }
func BooleanValue(b bool) Value      { return Value{Kind: Boolean, Bool: b} }
func TimestampValue(ns int64) Value  { return Value{Kind: Timestamp, I64: ns} }
func ArrayValue(elems []Value) Value { return Value{Kind: Array, Arr: elems} }

// Package rowcodec is the row serializer capability the core depends
// on: it encodes typed logical values into lexicographically ordered
// byte strings and extracts element bytes from array-typed values.
// It is an injected capability — the Indexer and split planner take a
// Codec interface, not this concrete implementation, but a real
// repository needs at least one working codec, so LexicographicCodec
// ships here in the style of CockroachDB's util/encoding package: a type
// tag byte followed by a sign/flip-adjusted payload so byte comparison
// matches logical comparison.
package rowcodec

// Kind is the logical type tag of a column value.
type Kind int

const (
	Varchar Kind = iota
	Bigint
	Double
	Boolean
	Timestamp
	Array
)

func (k Kind) String() string {
	switch k {
	case Varchar:
		return "VARCHAR"
	case Bigint:
		return "BIGINT"
	case Double:
		return "DOUBLE"
	case Boolean:
		return "BOOLEAN"
	case Timestamp:
		return "TIMESTAMP"
	case Array:
		return "ARRAY"
	default:
		return "UNKNOWN"
	}
}

// Type describes a column's logical type. Elem is only meaningful when
// Kind == Array and names the element type of the array.
type Type struct {
	Kind Kind
	Elem Kind
}

func ScalarType(k Kind) Type { return Type{Kind: k} }

func ArrayType(elem Kind) Type { return Type{Kind: Array, Elem: elem} }

func (t Type) String() string {
	if t.Kind == Array {
		return "ARRAY<" + t.Elem.String() + ">"
	}
	return t.Kind.String()
}

func (t Type) IsArray() bool { return t.Kind == Array }

package planner

import (
	"github.com/etmarx/presto-accumulo/pkg/kvstore"
	"github.com/etmarx/presto-accumulo/pkg/rowcodec"
)

// BoundType mirrors how a Marker clamps a logical range's endpoint.
type BoundType int

const (
	// Exactly means the endpoint's value itself is included.
	Exactly BoundType = iota
	// Above means the range starts strictly after the value (only
	// meaningful as a Low marker).
	Above
	// Below means the range ends strictly before the value (only
	// meaningful as a High marker).
	Below
)

// Marker is one endpoint of a LogicalRange.
type Marker struct {
	Bound BoundType
	Value rowcodec.Value
}

// LogicalRange is a range over a column's logical type: either
// endpoint may be nil for unbounded. A Low and High that carry the
// same encoded value with Bound == Exactly denote a single-value
// range.
type LogicalRange struct {
	Low  *Marker
	High *Marker
}

// Domain is a disjunction of LogicalRanges over one column — the
// predicate a ColumnConstraint carries.
type Domain []LogicalRange

// RangeFromDomain translates a Domain into the storage-level KeyRanges
// the KV adapter scans over.
func RangeFromDomain(codec rowcodec.Codec, t rowcodec.Type, d Domain) ([]kvstore.KeyRange, error) {
	out := make([]kvstore.KeyRange, 0, len(d))
	for _, r := range d {
		kr, err := rangeFromLogicalRange(codec, t, r)
		if err != nil {
			return nil, err
		}
		out = append(out, kr)
	}
	return out, nil
}

func rangeFromLogicalRange(codec rowcodec.Codec, t rowcodec.Type, r LogicalRange) (kvstore.KeyRange, error) {
	if r.Low == nil && r.High == nil {
		return kvstore.UnboundedRange(), nil
	}
	var kr kvstore.KeyRange
	if r.Low != nil {
		b, err := codec.Encode(t, r.Low.Value)
		if err != nil {
			return kvstore.KeyRange{}, err
		}
		kr.Start = b
		kr.StartInclusive = r.Low.Bound == Exactly
	}
	if r.High != nil {
		b, err := codec.Encode(t, r.High.Value)
		if err != nil {
			return kvstore.KeyRange{}, err
		}
		kr.End = b
		kr.EndInclusive = r.High.Bound == Exactly
	}
	return kr, nil
}

// Decoder is the inverse of rowcodec.Codec.Encode. It is not part of
// the Codec interface the core depends on — neither the Indexer nor
// the planner's write/probe paths ever need to decode an index key
// back into a logical value — but DomainFromRange needs it to
// reconstruct a Domain for round-trip testing.
type Decoder interface {
	Decode(t rowcodec.Type, b []byte) (rowcodec.Value, error)
}

// DomainFromRange is RangeFromDomain's inverse.
func DomainFromRange(dec Decoder, t rowcodec.Type, ranges []kvstore.KeyRange) (Domain, error) {
	d := make(Domain, 0, len(ranges))
	for _, kr := range ranges {
		lr, err := logicalRangeFromRange(dec, t, kr)
		if err != nil {
			return nil, err
		}
		d = append(d, lr)
	}
	return d, nil
}

func logicalRangeFromRange(dec Decoder, t rowcodec.Type, kr kvstore.KeyRange) (LogicalRange, error) {
	var lr LogicalRange
	if kr.Start == nil && kr.End == nil {
		return lr, nil
	}
	if kr.Start != nil {
		v, err := dec.Decode(t, kr.Start)
		if err != nil {
			return LogicalRange{}, err
		}
		b := Exactly
		if !kr.StartInclusive {
			b = Above
		}
		lr.Low = &Marker{Bound: b, Value: v}
	}
	if kr.End != nil {
		v, err := dec.Decode(t, kr.End)
		if err != nil {
			return LogicalRange{}, err
		}
		b := Exactly
		if !kr.EndInclusive {
			b = Below
		}
		lr.High = &Marker{Bound: b, Value: v}
	}
	return lr, nil
}

// inRangeBytes reports whether key falls within [low, high] at the
// byte level, honoring each bound's inclusivity.
func (r LogicalRange) inRangeBytes(low, high, key []byte, lowInclusive, highInclusive bool) bool {
	if low != nil {
		cmp := compareBytes(key, low)
		if cmp < 0 || (cmp == 0 && !lowInclusive) {
			return false
		}
	}
	if high != nil {
		cmp := compareBytes(key, high)
		if cmp > 0 || (cmp == 0 && !highInclusive) {
			return false
		}
	}
	return true
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// InRange reports whether key is within kr.
func InRange(kr kvstore.KeyRange, key []byte) bool {
	var lr LogicalRange
	return lr.inRangeBytes(kr.Start, kr.End, key, kr.StartInclusive, kr.EndInclusive)
}

// InRangeSet reports whether key is within any of ranges.
func InRangeSet(ranges []kvstore.KeyRange, key []byte) bool {
	for _, kr := range ranges {
		if InRange(kr, key) {
			return true
		}
	}
	return false
}

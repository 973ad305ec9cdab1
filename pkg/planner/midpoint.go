package planner

import "fmt"

// Midpoint computes a byte-wise midpoint of two equal-length byte
// arrays, the same way the original Accumulo client's artificial-split
// generator does: each byte position is treated independently, with
// the smaller of the two bytes at that position taken as the local
// low end, and a 128 remainder carried down from one byte into the
// next whenever that position's difference was odd. This is not a
// true big-integer midpoint of the two arrays as a whole — it's a
// cheap per-byte approximation that was good enough to pick split
// points that fall strictly between two tablet boundaries, and
// reproducing it exactly (remainder propagation and all) matters more
// here than deriving a "more correct" midpoint from scratch.
func Midpoint(a, b []byte) ([]byte, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("planner: midpoint requires equal-length byte arrays, got %d and %d", len(a), len(b))
	}
	mid := make([]byte, len(a))
	remainder := 0
	for i := range a {
		lo, hi := int(a[i]), int(b[i])
		if lo > hi {
			lo, hi = hi, lo
		}
		m := (hi-lo)/2 + lo + remainder
		if (hi-lo)%2 == 1 {
			remainder = 128
		} else {
			remainder = 0
		}
		mid[i] = byte(m)
	}
	return mid, nil
}

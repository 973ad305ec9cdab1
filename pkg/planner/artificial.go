package planner

import (
	"context"

	"github.com/etmarx/presto-accumulo/pkg/index"
	"github.com/etmarx/presto-accumulo/pkg/kvstore"
)

// applyArtificialSplits recursively bisects every range in ranges by
// the byte-wise midpoint of its endpoints, clamping unbounded
// endpoints to the table's first/last indexed row-ID, for levels
// rounds. Each round re-bisects every range produced by the previous
// round, so an input range can yield up to 2^levels sub-ranges — this
// mirrors the original client's own recursion, which re-bisects
// already-bisected ranges rather than cutting the original range into
// evenly-spaced pieces.
//
// If the table has no metrics yet (nothing has been indexed),
// artificial splitting is a no-op — there is no first/last row-ID to
// clamp unbounded endpoints to.
func applyArtificialSplits(ctx context.Context, kv *kvstore.Adapter, desc index.TableDescriptor, ranges []kvstore.KeyRange, levels int) ([]kvstore.KeyRange, error) {
	first, last, ok, err := index.MinMaxRowIDs(ctx, kv, desc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return ranges, nil
	}

	current := ranges
	for level := 0; level < levels; level++ {
		next := make([]kvstore.KeyRange, 0, len(current)*2)
		for _, r := range current {
			next = append(next, bisect(r, first, last)...)
		}
		current = next
	}
	return current, nil
}

func bisect(r kvstore.KeyRange, first, last []byte) []kvstore.KeyRange {
	lo := r.Start
	if lo == nil {
		lo = first
	}
	hi := r.End
	if hi == nil {
		hi = last
	}
	if len(lo) != len(hi) {
		// Endpoints of different lengths can't be midpointed
		// byte-wise; leave the range unsplit rather than guess.
		return []kvstore.KeyRange{r}
	}

	mid, err := Midpoint(lo, hi)
	if err != nil {
		return []kvstore.KeyRange{r}
	}

	left := kvstore.KeyRange{Start: r.Start, StartInclusive: r.StartInclusive, End: mid, EndInclusive: true}
	right := kvstore.KeyRange{Start: mid, StartInclusive: false, End: r.End, EndInclusive: r.EndInclusive}
	return []kvstore.KeyRange{left, right}
}

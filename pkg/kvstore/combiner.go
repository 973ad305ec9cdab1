package kvstore

import (
	"io"
	"strconv"

	"github.com/cockroachdb/pebble"
)

// stringSumMerger returns the pebble.Merger that stands in for
// Accumulo's server-side summing combiner (an all-scopes STRING
// summing combiner at top priority). Every Merge operation on a
// metrics table's ___card___ cell sums the ASCII decimal values
// instead of overwriting them, so concurrent flushes of disjoint
// batches never lose a delta.
//
// Pebble applies merge operators at read time, memtable flush, and
// compaction — the same three points Accumulo calls "scan", "minc",
// and "majc" scopes.
func stringSumMerger() *pebble.Merger {
	return &pebble.Merger{
		Name: "prestoaccumulo.stringsum",
		Merge: func(key, value []byte) (pebble.ValueMerger, error) {
			m := &stringSumValueMerger{}
			if err := m.MergeNewer(value); err != nil {
				return nil, err
			}
			return m, nil
		},
	}
}

// stringSumValueMerger accumulates decimal-ASCII deltas for one key.
type stringSumValueMerger struct {
	sum int64
}

func (m *stringSumValueMerger) MergeNewer(value []byte) error {
	n, err := parseDecimal(value)
	if err != nil {
		return err
	}
	m.sum += n
	return nil
}

func (m *stringSumValueMerger) MergeOlder(value []byte) error {
	n, err := parseDecimal(value)
	if err != nil {
		return err
	}
	m.sum += n
	return nil
}

func (m *stringSumValueMerger) Finish(includesBase bool) ([]byte, io.Closer, error) {
	return []byte(strconv.FormatInt(m.sum, 10)), nil, nil
}

func parseDecimal(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, nil
	}
	return strconv.ParseInt(string(b), 10, 64)
}

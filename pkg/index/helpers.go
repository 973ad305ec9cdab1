package index

import (
	"context"

	"github.com/etmarx/presto-accumulo/pkg/errs"
	"github.com/etmarx/presto-accumulo/pkg/kvstore"
	"github.com/etmarx/presto-accumulo/pkg/names"
)

// MinMaxRowIDs reads back the ___first_row___/___last_row___ sentinel
// cells an Indexer has written to desc's metrics table. It returns
// ok == false if no row has ever been indexed for this table.
func MinMaxRowIDs(ctx context.Context, kv *kvstore.Adapter, desc TableDescriptor) (first, last []byte, ok bool, err error) {
	cells, scanErr := kv.Scan(ctx, desc.MetricsTableName(),
		kvstore.KeyRange{
			Start: names.MetricsTableRowID, StartInclusive: true,
			End: names.MetricsTableRowID, EndInclusive: true,
		},
		names.MetricsTableRowsCF)
	if scanErr != nil {
		return nil, nil, false, errs.Wrap(scanErr, "index.MinMaxRowIDs", "index")
	}

	for _, c := range cells {
		switch string(c.Qualifier) {
		case string(names.FirstRowCQ):
			first = c.Value
		case string(names.LastRowCQ):
			last = c.Value
		}
	}
	return first, last, first != nil && last != nil, nil
}

// Cardinality reads back the distinct-row count for one index key under
// an indexed (family, qualifier) pair — the number of source rows that
// produced at least one index cell for that value.
func Cardinality(ctx context.Context, kv *kvstore.Adapter, desc TableDescriptor, col ColumnDescriptor, encodedValue []byte) (int64, bool, error) {
	cells, err := kv.Scan(ctx, desc.MetricsTableName(),
		kvstore.KeyRange{
			Start: encodedValue, StartInclusive: true,
			End: encodedValue, EndInclusive: true,
		},
		[]byte(col.IndexFamily()))
	if err != nil {
		return 0, false, errs.Wrap(err, "index.Cardinality", "index")
	}
	for _, c := range cells {
		if string(c.Qualifier) == string(names.CardinalityCQ) {
			n, parseErr := parseDecimal(c.Value)
			if parseErr != nil {
				return 0, false, errs.Wrap(parseErr, "index.Cardinality", "index")
			}
			return n, true, nil
		}
	}
	return 0, false, nil
}

// RowCount reads back the total number of rows an Indexer has ever
// indexed for desc (the ___rows___/___card___ sentinel cell).
func RowCount(ctx context.Context, kv *kvstore.Adapter, desc TableDescriptor) (int64, error) {
	cells, err := kv.Scan(ctx, desc.MetricsTableName(),
		kvstore.KeyRange{
			Start: names.MetricsTableRowID, StartInclusive: true,
			End: names.MetricsTableRowID, EndInclusive: true,
		},
		names.MetricsTableRowsCF)
	if err != nil {
		return 0, errs.Wrap(err, "index.RowCount", "index")
	}
	for _, c := range cells {
		if string(c.Qualifier) == string(names.CardinalityCQ) {
			return parseDecimal(c.Value)
		}
	}
	return 0, nil
}

func parseDecimal(b []byte) (int64, error) {
	var n int64
	neg := false
	i := 0
	if len(b) > 0 && b[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(b) {
		return 0, errs.New(errs.Invariant, "index.parseDecimal", "empty numeral")
	}
	for ; i < len(b); i++ {
		if b[i] < '0' || b[i] > '9' {
			return 0, errs.New(errs.Invariant, "index.parseDecimal", "non-decimal byte in counter cell")
		}
		n = n*10 + int64(b[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}

package kvstore

import (
	"bytes"
	"context"
	"sort"

	"github.com/cockroachdb/pebble"

	"github.com/etmarx/presto-accumulo/pkg/errs"
	"github.com/etmarx/presto-accumulo/pkg/names"
)

const locFamily = "loc"
const hostQualifier = "host"

var defaultTabletHost = []byte("localhost:0")

// RegisterTablet records that the tablet ending at endKey (inclusive)
// is served by hostPort. A nil endKey registers the default (last)
// tablet. This is the write side of the reserved "<table>_idx_locs"
// table that TabletLocations reads (a real deployment would populate
// this from Accumulo's own catalog; the connector never creates
// tablets itself, so tests and the demo CLI call this directly).
func (a *Adapter) RegisterTablet(schema, table string, endKey []byte, hostPort string) error {
	locsTable := names.TabletLocationsTable(schema, table)
	w, err := a.BatchWriter(locsTable, WriterConfig{})
	if err != nil {
		return err
	}
	row := endKey
	if row == nil {
		row = []byte{0xFF}
	}
	m := NewMutation(row).Put([]byte(locFamily), []byte(hostQualifier), []byte(hostPort))
	if err := w.Write(m); err != nil {
		return err
	}
	return w.Close()
}

// TabletLocations returns the host:port of the tablet that would serve
// key: the least tablet end-key >= key. If key is nil, it returns the
// default (last) tablet's location.
func (a *Adapter) TabletLocations(ctx context.Context, schema, table string, key []byte) (string, error) {
	locsTable := names.TabletLocationsTable(schema, table)
	db, err := a.db(locsTable)
	if err != nil {
		return "", err
	}

	var lower []byte
	if key != nil {
		lower = rowPrefixKey(key)
	}
	it, err := db.NewIter(&pebble.IterOptions{LowerBound: lower})
	if err != nil {
		return "", errs.Wrap(err, "Adapter.TabletLocations", "kvstore")
	}
	defer it.Close()

	if key == nil {
		if !it.Last() {
			return string(defaultTabletHost), nil
		}
	} else {
		if !it.First() {
			return string(defaultTabletHost), nil
		}
	}

	for it.Valid() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		_, fam, qual, ok := decodeCellKey(it.Key())
		if ok && bytes.Equal(fam, []byte(locFamily)) && bytes.Equal(qual, []byte(hostQualifier)) {
			return string(it.Value()), nil
		}
		if key == nil {
			if !it.Prev() {
				break
			}
		} else {
			if !it.Next() {
				break
			}
		}
	}
	return string(defaultTabletHost), nil
}

// tabletBoundaries returns every registered tablet end-key that falls
// within r, sorted ascending. The default (last) tablet has no end-key,
// so its placeholder row is not a boundary.
func (a *Adapter) tabletBoundaries(ctx context.Context, schema, table string, r KeyRange) ([][]byte, error) {
	locsTable := names.TabletLocationsTable(schema, table)
	cells, err := a.Scan(ctx, locsTable, r, []byte(locFamily))
	if err != nil {
		return nil, err
	}
	bounds := make([][]byte, 0, len(cells))
	for _, c := range cells {
		if bytes.Equal(c.Row, []byte{0xFF}) {
			continue
		}
		bounds = append(bounds, c.Row)
	}
	sort.Slice(bounds, func(i, j int) bool { return bytes.Compare(bounds[i], bounds[j]) < 0 })
	return bounds, nil
}

// SplitRangeByTablets returns the sub-ranges of r induced by tablet
// boundaries. If no tablet end-keys are registered for the table (none
// at all, or only the default tablet), r is returned unsplit.
func (a *Adapter) SplitRangeByTablets(ctx context.Context, schema, table string, r KeyRange) ([]KeyRange, error) {
	bounds, err := a.tabletBoundaries(ctx, schema, table, r)
	if err != nil {
		return nil, err
	}
	if len(bounds) == 0 {
		return []KeyRange{r}, nil
	}

	var out []KeyRange
	cur := r.Start
	curInclusive := r.StartInclusive
	for _, b := range bounds {
		out = append(out, KeyRange{
			Start: cur, StartInclusive: curInclusive,
			End: b, EndInclusive: true,
		})
		cur = b
		curInclusive = false
	}
	out = append(out, KeyRange{Start: cur, StartInclusive: curInclusive, End: r.End, EndInclusive: r.EndInclusive})
	return out, nil
}

package kvstore

import (
	"bytes"
	"context"

	"github.com/cockroachdb/pebble"
	"golang.org/x/sync/errgroup"

	"github.com/etmarx/presto-accumulo/pkg/errs"
)

// Cell is a single (row, family, qualifier, value) tuple read back from
// a scan.
type Cell struct {
	Row       []byte
	Family    []byte
	Qualifier []byte
	Value     []byte
}

// KeyRange is a half-open-or-closed range over row bytes, the unit the
// KV adapter scans over. A nil Start means unbounded below; a nil End
// means unbounded above.
type KeyRange struct {
	Start          []byte
	End            []byte
	StartInclusive bool
	EndInclusive   bool
}

// UnboundedRange is the full-table range.
func UnboundedRange() KeyRange { return KeyRange{} }

// lowerBound/upperBound translate the logical row range into the
// physical pebble iterator bounds described in key.go.
func (r KeyRange) lowerBound() []byte {
	if r.Start == nil {
		return nil
	}
	p := rowPrefixKey(r.Start)
	if r.StartInclusive {
		return p
	}
	return prefixUpperBound(p)
}

func (r KeyRange) upperBound() []byte {
	if r.End == nil {
		return nil
	}
	p := rowPrefixKey(r.End)
	if r.EndInclusive {
		return prefixUpperBound(p)
	}
	return p
}

// Scan reads every cell in table whose row falls within r, optionally
// restricted to one column family (pass nil for no filter). The
// context is checked between each iterator step so a cancelled caller
// never issues another backend call.
func (a *Adapter) Scan(ctx context.Context, table string, r KeyRange, family []byte) ([]Cell, error) {
	db, err := a.db(table)
	if err != nil {
		return nil, err
	}
	a.metrics.scans.WithLabelValues(table).Inc()

	it, err := db.NewIter(&pebble.IterOptions{LowerBound: r.lowerBound(), UpperBound: r.upperBound()})
	if err != nil {
		return nil, errs.Wrap(err, "Adapter.Scan", "kvstore")
	}
	defer it.Close()

	var out []Cell
	for it.First(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, fam, qual, ok := decodeCellKey(it.Key())
		if !ok {
			continue
		}
		if family != nil && !bytes.Equal(fam, family) {
			continue
		}
		out = append(out, Cell{
			Row:       append([]byte{}, row...),
			Family:    append([]byte{}, fam...),
			Qualifier: append([]byte{}, qual...),
			Value:     append([]byte{}, it.Value()...),
		})
	}
	return out, it.Error()
}

// BatchScan runs Scan over every range in ranges concurrently, bounded
// by concurrency workers (Accumulo's BatchScanner fixes its thread
// count at 10; here it's configurable). Results preserve no particular
// cross-range order; callers that need ordering sort afterwards — the
// planner's probes only care about set membership, not order.
func (a *Adapter) BatchScan(ctx context.Context, table string, ranges []KeyRange, family []byte, concurrency int) ([]Cell, error) {
	if concurrency <= 0 {
		concurrency = a.cfg.concurrency()
	}

	results := make([][]Cell, len(ranges))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, rg := range ranges {
		i, rg := i, rg
		g.Go(func() error {
			cells, err := a.Scan(gctx, table, rg, family)
			if err != nil {
				return err
			}
			results[i] = cells
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Cell
	for _, cells := range results {
		out = append(out, cells...)
	}
	return out, nil
}

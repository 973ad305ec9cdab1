package index

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/etmarx/presto-accumulo/pkg/errs"
	"github.com/etmarx/presto-accumulo/pkg/kvstore"
	"github.com/etmarx/presto-accumulo/pkg/logging"
	"github.com/etmarx/presto-accumulo/pkg/names"
	"github.com/etmarx/presto-accumulo/pkg/rowcodec"
)

// Config tunes an Indexer's writers.
type Config struct {
	WriterConfig kvstore.WriterConfig
}

// Indexer is the secondary-index write path: for every Row it writes
// the data cells unchanged, derives one index cell per indexed scalar
// column (or per distinct array element), and accumulates the
// statistics that Flush drains into the metrics table.
//
// An Indexer is single-writer, synchronous — nothing here calls it
// concurrently, so the per-batch counters below are plain fields
// rather than atomics. The original's AtomicLong counters anticipate a
// concurrent-ingest path this repository doesn't build.
type Indexer struct {
	desc  TableDescriptor
	kv    *kvstore.Adapter
	codec rowcodec.Codec

	data    *kvstore.Writer
	index   *kvstore.Writer
	metrics *kvstore.Writer

	batchRowCount   int64
	batchValueCount map[string]int64 // key: indexFamily + "\x00" + encoded value

	globalMinRow []byte
	globalMaxRow []byte
}

// New opens an Indexer for desc against kv, using codec to encode
// column values. It opens (or creates) the data, index, and metrics
// writers eagerly — the three tables always come into existence
// together, not lazily on first write.
func New(ctx context.Context, kv *kvstore.Adapter, codec rowcodec.Codec, desc TableDescriptor, cfg Config) (*Indexer, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	data, err := kv.BatchWriter(desc.DataTableName(), cfg.WriterConfig)
	if err != nil {
		return nil, errs.Wrap(err, "index.New", "index")
	}
	idx, err := kv.BatchWriter(desc.IndexTableName(), cfg.WriterConfig)
	if err != nil {
		return nil, errs.Wrap(err, "index.New", "index")
	}
	met, err := kv.BatchWriter(desc.MetricsTableName(), cfg.WriterConfig)
	if err != nil {
		return nil, errs.Wrap(err, "index.New", "index")
	}

	return &Indexer{
		desc:            desc,
		kv:              kv,
		codec:           codec,
		data:            data,
		index:           idx,
		metrics:         met,
		batchValueCount: make(map[string]int64),
	}, nil
}

// Index applies one logical row: writes its data cells unchanged and
// derives index cells for every indexed column.
//
// Emission order within a single call is data columns first, then
// their index cells, mirroring the write path's overall data→index→
// metrics ordering.
func (ix *Indexer) Index(row Row) error {
	data := kvstore.NewMutation(row.ID)
	var indexUpdates []*kvstore.Mutation

	for _, cv := range row.Columns {
		col, ok := ix.desc.Column(cv.Family, cv.Qualifier)
		if !ok {
			return errs.New(errs.Invariant, "Indexer.Index",
				fmt.Sprintf("column (%s,%s) not in table descriptor", cv.Family, cv.Qualifier))
		}

		encoded, err := encodeColumnValue(ix.codec, col, cv.Value)
		if err != nil {
			return errs.Wrap(err, "Indexer.Index", "index")
		}
		data.Put([]byte(cv.Family), []byte(cv.Qualifier), encoded)

		if !col.Indexed {
			continue
		}

		indexFamily := []byte(col.IndexFamily())
		if col.Type.IsArray() {
			elems, err := ix.codec.ArrayElements(col.Type, cv.Value)
			if err != nil {
				return errs.Wrap(err, "Indexer.Index", "index")
			}
			for _, elem := range elems {
				indexUpdates = append(indexUpdates, kvstore.NewMutation(elem).PutEmpty(indexFamily, row.ID))
				ix.bumpValueCount(col.IndexFamily(), elem)
			}
		} else {
			value, err := ix.codec.Encode(col.Type, cv.Value)
			if err != nil {
				return errs.Wrap(err, "Indexer.Index", "index")
			}
			indexUpdates = append(indexUpdates, kvstore.NewMutation(value).PutEmpty(indexFamily, row.ID))
			ix.bumpValueCount(col.IndexFamily(), value)
		}
	}

	if err := ix.data.Write(data); err != nil {
		return errs.Wrap(err, "Indexer.Index", "index")
	}
	for _, m := range indexUpdates {
		if err := ix.index.Write(m); err != nil {
			return errs.Wrap(err, "Indexer.Index", "index")
		}
	}

	ix.batchRowCount++
	if ix.globalMinRow == nil || bytes.Compare(row.ID, ix.globalMinRow) < 0 {
		ix.globalMinRow = append([]byte{}, row.ID...)
	}
	if ix.globalMaxRow == nil || bytes.Compare(row.ID, ix.globalMaxRow) > 0 {
		ix.globalMaxRow = append([]byte{}, row.ID...)
	}

	return nil
}

func (ix *Indexer) bumpValueCount(indexFamily string, value []byte) {
	key := indexFamily + "\x00" + string(value)
	ix.batchValueCount[key]++
}

// Flush drains the data and index writers, then builds and drains the
// metrics mutations for this batch: one summed ___card___ merge per
// distinct index key touched, a summed ___rows___ merge for the row
// counter, and a Set of the running ___first_row___/___last_row___
// pair. In-memory per-batch counters are reset afterward; the running
// min/max row-ID persists across flushes.
func (ix *Indexer) Flush() error {
	if err := ix.data.Flush(); err != nil {
		return errs.Wrap(err, "Indexer.Flush", "index")
	}
	if err := ix.index.Flush(); err != nil {
		return errs.Wrap(err, "Indexer.Flush", "index")
	}

	for key, delta := range ix.batchValueCount {
		family, value := splitValueCountKey(key)
		m := kvstore.NewMutation([]byte(value)).Merge([]byte(family), names.CardinalityCQ, []byte(strconv.FormatInt(delta, 10)))
		if err := ix.metrics.Write(m); err != nil {
			return errs.Wrap(err, "Indexer.Flush", "index")
		}
	}

	if ix.batchRowCount > 0 {
		rowsDelta := kvstore.NewMutation(names.MetricsTableRowID).
			Merge(names.MetricsTableRowsCF, names.CardinalityCQ, []byte(strconv.FormatInt(ix.batchRowCount, 10)))
		if err := ix.metrics.Write(rowsDelta); err != nil {
			return errs.Wrap(err, "Indexer.Flush", "index")
		}
	}

	if ix.globalMinRow != nil {
		bounds := kvstore.NewMutation(names.MetricsTableRowID).
			Put(names.MetricsTableRowsCF, names.FirstRowCQ, ix.globalMinRow).
			Put(names.MetricsTableRowsCF, names.LastRowCQ, ix.globalMaxRow)
		if err := ix.metrics.Write(bounds); err != nil {
			return errs.Wrap(err, "Indexer.Flush", "index")
		}
	}

	if err := ix.metrics.Flush(); err != nil {
		return errs.Wrap(err, "Indexer.Flush", "index")
	}

	logging.WithTable(ix.desc.Table).Debug("flushed indexer batch",
		"rows", ix.batchRowCount, "distinct_index_keys", len(ix.batchValueCount))

	ix.batchRowCount = 0
	ix.batchValueCount = make(map[string]int64)
	return nil
}

// Close flushes any remaining buffered work and releases the writers.
func (ix *Indexer) Close() error {
	if err := ix.Flush(); err != nil {
		return err
	}
	if err := ix.data.Close(); err != nil {
		return err
	}
	if err := ix.index.Close(); err != nil {
		return err
	}
	return ix.metrics.Close()
}

func splitValueCountKey(key string) (family, value string) {
	for i := 0; i < len(key); i++ {
		if key[i] == 0 {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}

func encodeColumnValue(codec rowcodec.Codec, col ColumnDescriptor, v rowcodec.Value) ([]byte, error) {
	if col.Type.IsArray() {
		if v.Kind != rowcodec.Array {
			return nil, &rowcodec.ErrKindMismatch{Expected: rowcodec.Array, Got: v.Kind}
		}
		elems := make([][]byte, 0, len(v.Arr))
		for _, e := range v.Arr {
			b, err := codec.Encode(rowcodec.ScalarType(col.Type.Elem), e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, b)
		}
		return joinElements(elems), nil
	}
	return codec.Encode(col.Type, v)
}

// joinElements packs an array column's element encodings into a single
// data-cell value using the same length-prefix-free escape scheme as a
// composite key segment, so the data table's representation needs no
// separate decoder.
func joinElements(elems [][]byte) []byte {
	var out []byte
	for i, e := range elems {
		if i > 0 {
			out = append(out, 0x00, 0x01)
		}
		for _, b := range e {
			if b == 0x00 {
				out = append(out, 0x00, 0xFF)
			} else {
				out = append(out, b)
			}
		}
	}
	return out
}

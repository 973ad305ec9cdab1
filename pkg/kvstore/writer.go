package kvstore

import (
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"

	"github.com/etmarx/presto-accumulo/pkg/errs"
	"github.com/etmarx/presto-accumulo/pkg/logging"
)

// WriterConfig tunes a Writer's buffering. MaxBufferedMutations is
// advisory — a Writer never drops a mutation, it just flushes sooner.
type WriterConfig struct {
	MaxBufferedMutations int
}

// Writer is a batched writer over one table. Write buffers; Flush
// blocks until every buffered mutation is durable; Close implies a
// final Flush.
//
// A Writer is not safe for concurrent use — the Indexer that owns it
// writes synchronously from a single goroutine.
type Writer struct {
	table string
	db    *pebble.DB
	cfg   WriterConfig
	id    string

	mu      sync.Mutex
	batch   *pebble.Batch
	n       int
	metrics *metricsSet
}

// BatchWriter opens a Writer for table, creating the backing pebble.DB
// if this is the first writer (or scanner) to touch it.
func (a *Adapter) BatchWriter(table string, cfg WriterConfig) (*Writer, error) {
	db, err := a.db(table)
	if err != nil {
		return nil, err
	}
	w := &Writer{
		table:   table,
		db:      db,
		cfg:     cfg,
		id:      uuid.NewString(),
		batch:   db.NewBatch(),
		metrics: a.metrics,
	}
	logging.WithBatch(w.id).Debug("opened writer", "table", table)
	return w, nil
}

// Write buffers mutation's cell updates. It blocks on the backend only
// when MaxBufferedMutations is set and reached, in which case it
// flushes the batch; otherwise call Flush or Close to force durability.
func (w *Writer) Write(m *Mutation) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, u := range m.Updates {
		key := encodeCellKey(m.Row, u.Family, u.Qualifier)
		var err error
		switch u.Op {
		case MergeOp:
			err = w.batch.Merge(key, u.Value, nil)
		default:
			err = w.batch.Set(key, u.Value, nil)
		}
		if err != nil {
			return errs.Wrap(err, "Writer.Write", "kvstore")
		}
		w.metrics.writes.WithLabelValues(w.table).Inc()
	}

	w.n++
	if w.cfg.MaxBufferedMutations > 0 && w.n >= w.cfg.MaxBufferedMutations {
		return w.flushLocked()
	}
	return nil
}

// Flush blocks until every buffered mutation is durable.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

func (w *Writer) flushLocked() error {
	if w.batch.Empty() {
		return nil
	}
	start := time.Now()
	if err := w.db.Apply(w.batch, pebble.Sync); err != nil {
		return errs.Wrap(err, "Writer.Flush", "kvstore")
	}
	w.metrics.flushes.WithLabelValues(w.table).Observe(time.Since(start).Seconds())
	logging.WithBatch(w.id).Debug("flushed batch", "table", w.table, "mutations", w.n)
	w.batch = w.db.NewBatch()
	w.n = 0
	return nil
}

// Close implies a final Flush, then releases the Writer. It does not
// close the underlying table — the Adapter owns that for its own
// lifetime.
func (w *Writer) Close() error {
	return w.Flush()
}

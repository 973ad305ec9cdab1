package kvstore

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/etmarx/presto-accumulo/pkg/errs"
	"github.com/etmarx/presto-accumulo/pkg/logging"
	"github.com/etmarx/presto-accumulo/pkg/names"
)

// Config configures an Adapter.
type Config struct {
	// BaseDir is the directory under which each table gets its own
	// pebble directory (BaseDir/<table>).
	BaseDir string
	// ScanConcurrency bounds BatchScanner's worker pool. Zero means the
	// original's fixed 10 threads.
	ScanConcurrency int
}

func (c Config) concurrency() int {
	if c.ScanConcurrency <= 0 {
		return 10
	}
	return c.ScanConcurrency
}

// Adapter abstracts the underlying sorted KV store. One KV connection
// (the Adapter) is shared per process; Indexer and Planner instances
// reference it weakly — its lifetime is the longest of any active
// handle.
type Adapter struct {
	cfg Config

	mu  sync.Mutex
	dbs map[string]*pebble.DB

	metrics *metricsSet
}

// Open creates an Adapter rooted at cfg.BaseDir. It does not open any
// per-table pebble databases eagerly — those open lazily on first use.
func Open(cfg Config) (*Adapter, error) {
	if cfg.BaseDir == "" {
		return nil, errs.New(errs.Misconfiguration, "kvstore.Open", "BaseDir must be set")
	}
	return &Adapter{
		cfg:     cfg,
		dbs:     make(map[string]*pebble.DB),
		metrics: newMetricsSet(),
	}, nil
}

// db returns (opening if necessary) the pebble.DB backing table. A
// metrics-table name (see IsMetricsTable) gets the summing-combiner
// Merger installed at open time.
func (a *Adapter) db(table string) (*pebble.DB, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if db, ok := a.dbs[table]; ok {
		return db, nil
	}

	opts := &pebble.Options{}
	if names.IsMetricsTable(table) {
		opts.Merger = stringSumMerger()
	}

	dir := filepath.Join(a.cfg.BaseDir, sanitizeDirName(table))
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, errs.Wrap(err, "kvstore.Adapter.db", "kvstore")
	}
	a.dbs[table] = db
	logging.WithTable(table).Info("opened table", "dir", dir)
	return db, nil
}

func sanitizeDirName(table string) string {
	out := make([]rune, 0, len(table))
	for _, r := range table {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// Close closes every pebble.DB the adapter has opened. It is not safe
// to use the Adapter, or any Writer/Scanner derived from it, after
// Close returns.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var firstErr error
	for name, db := range a.dbs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing table %s: %w", name, err)
		}
	}
	a.dbs = make(map[string]*pebble.DB)
	return firstErr
}

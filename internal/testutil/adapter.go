// Package testutil spins up a temp-dir-backed kvstore.Adapter for tests
// that need one, so pkg/index and pkg/planner's test suites don't each
// duplicate the same MkdirTemp/Open/Cleanup dance. pkg/kvstore's own
// tests stay independent of this package to avoid importing back into
// the package they're testing.
package testutil

import (
	"os"
	"testing"

	"github.com/etmarx/presto-accumulo/pkg/kvstore"
)

// OpenAdapter opens a kvstore.Adapter rooted at a fresh temp directory
// and registers cleanup for both the adapter and the directory.
func OpenAdapter(t *testing.T) *kvstore.Adapter {
	t.Helper()
	dir, err := os.MkdirTemp("", "presto-accumulo-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	kv, err := kvstore.Open(kvstore.Config{BaseDir: dir})
	if err != nil {
		t.Fatalf("kvstore.Open: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

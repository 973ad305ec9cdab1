package planner

import (
	"bytes"

	"github.com/google/btree"
)

// rowIDItem is a row-ID wrapped for ordered storage in a btree.BTree
// (pattern follows influxdata-influxdb's inmem.KVStore, which keeps its
// ordered in-memory index the same way).
type rowIDItem []byte

func (i rowIDItem) Less(other btree.Item) bool {
	return bytes.Compare(i, other.(rowIDItem)) < 0
}

// rowIDSet is an ordered set of row-IDs used to resolve index probes
// and their intersection. Ordering is incidental to correctness but
// makes the resulting candidate ranges deterministic before shuffling
// and binning.
type rowIDSet struct {
	tree *btree.BTree
}

func newRowIDSet() *rowIDSet {
	return &rowIDSet{tree: btree.New(8)}
}

func (s *rowIDSet) Add(id []byte) {
	s.tree.ReplaceOrInsert(rowIDItem(append([]byte{}, id...)))
}

func (s *rowIDSet) Has(id []byte) bool {
	return s.tree.Has(rowIDItem(id))
}

func (s *rowIDSet) Len() int {
	return s.tree.Len()
}

// Intersect returns the set of row-IDs present in both s and other.
func (s *rowIDSet) Intersect(other *rowIDSet) *rowIDSet {
	out := newRowIDSet()
	s.tree.Ascend(func(i btree.Item) bool {
		id := []byte(i.(rowIDItem))
		if other.Has(id) {
			out.Add(id)
		}
		return true
	})
	return out
}

// Each calls fn for every row-ID, ascending.
func (s *rowIDSet) Each(fn func(id []byte)) {
	s.tree.Ascend(func(i btree.Item) bool {
		fn([]byte(i.(rowIDItem)))
		return true
	})
}

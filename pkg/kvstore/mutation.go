package kvstore

// CellOp selects how a ColumnUpdate's value is applied to the stored
// cell.
type CellOp int

const (
	// SetOp overwrites the cell's value (the default for data and
	// index cells).
	SetOp CellOp = iota
	// MergeOp applies the value through the table's installed
	// pebble.Merger — used for the metrics table's ___card___ deltas
	// so cross-batch sums commute.
	MergeOp
)

// ColumnUpdate is one (family, qualifier, value) cell update within a
// Mutation. An empty Value marks an index cell — the cell exists purely
// for its key.
type ColumnUpdate struct {
	Family    []byte
	Qualifier []byte
	Value     []byte
	Op        CellOp
}

// Mutation is a set of cell updates sharing one row, committed
// atomically at the row level.
type Mutation struct {
	Row     []byte
	Updates []ColumnUpdate
}

// NewMutation starts a Mutation for the given row.
func NewMutation(row []byte) *Mutation {
	return &Mutation{Row: row}
}

// Put appends a cell update with an explicit value, applied with Set
// semantics.
func (m *Mutation) Put(family, qualifier, value []byte) *Mutation {
	m.Updates = append(m.Updates, ColumnUpdate{Family: family, Qualifier: qualifier, Value: value, Op: SetOp})
	return m
}

// PutEmpty appends an index-cell update: a key with no meaningful value.
func (m *Mutation) PutEmpty(family, qualifier []byte) *Mutation {
	return m.Put(family, qualifier, []byte{})
}

// Merge appends a cell update applied through the table's combiner
// (MergeOp) rather than overwritten.
func (m *Mutation) Merge(family, qualifier, delta []byte) *Mutation {
	m.Updates = append(m.Updates, ColumnUpdate{Family: family, Qualifier: qualifier, Value: delta, Op: MergeOp})
	return m
}

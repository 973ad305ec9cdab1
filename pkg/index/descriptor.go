// Package index implements the secondary-index engine: for every data
// mutation it derives inverted-index cells plus statistics cells and
// writes them through the KV adapter.
package index

import (
	"fmt"

	"github.com/etmarx/presto-accumulo/pkg/errs"
	"github.com/etmarx/presto-accumulo/pkg/names"
	"github.com/etmarx/presto-accumulo/pkg/rowcodec"
)

// ColumnDescriptor describes one column of a user table: its storage
// position (family, qualifier) and logical type, and whether it
// participates in the secondary index. A column is indexed exactly
// when this flag is set at schema time — there's no way to flip it
// after the fact without rebuilding the index.
type ColumnDescriptor struct {
	Name      string
	Family    string
	Qualifier string
	Type      rowcodec.Type
	Indexed   bool
}

// IndexFamily returns this column's index-table family, "family_qualifier".
func (c ColumnDescriptor) IndexFamily() string {
	return names.IndexFamily(c.Family, c.Qualifier)
}

// TableDescriptor is a user table's schema: the row-ID column and the
// rest of its columns, plus the schema/table name used to derive the
// data/index/metrics table names.
//
// Modeled as a plain value type with a column slice owned by value —
// columns hold no back-reference to their owning table, so there's no
// cycle to worry about; AddColumn is a functional rebuild of the
// slice, not an in-place mutation with renumbered ordinals.
type TableDescriptor struct {
	Schema      string
	Table       string
	RowIDColumn string
	RowIDType   rowcodec.Type
	Columns     []ColumnDescriptor
}

// AddColumn returns a new TableDescriptor with col appended. The
// receiver is left unmodified.
func (d TableDescriptor) AddColumn(col ColumnDescriptor) TableDescriptor {
	cols := make([]ColumnDescriptor, len(d.Columns)+1)
	copy(cols, d.Columns)
	cols[len(d.Columns)] = col
	d.Columns = cols
	return d
}

// Column looks up a column by (family, qualifier).
func (d TableDescriptor) Column(family, qualifier string) (ColumnDescriptor, bool) {
	for _, c := range d.Columns {
		if c.Family == family && c.Qualifier == qualifier {
			return c, true
		}
	}
	return ColumnDescriptor{}, false
}

// IndexedColumns returns the subset of Columns with Indexed set.
func (d TableDescriptor) IndexedColumns() []ColumnDescriptor {
	var out []ColumnDescriptor
	for _, c := range d.Columns {
		if c.Indexed {
			out = append(out, c)
		}
	}
	return out
}

// HasIndexedColumns reports whether any column is indexed — the three
// backing tables are only ever created together, and only when this
// holds.
func (d TableDescriptor) HasIndexedColumns() bool {
	return len(d.IndexedColumns()) > 0
}

// LocalityGroups returns, for each indexed (family, qualifier), the
// locality group name it should belong to in the index and metrics
// tables: "f_q" mapped to the single column family "f_q". The KV
// adapter backing this repository
// (pebble) has no notion of per-family block grouping within one
// table — a real Accumulo/HBase adapter would use this to create a
// true locality group; here it is metadata a caller configuring a
// different backend can still read.
func (d TableDescriptor) LocalityGroups() map[string][]string {
	groups := make(map[string][]string)
	for _, c := range d.IndexedColumns() {
		name := c.IndexFamily()
		groups[name] = []string{name}
	}
	return groups
}

// DataTableName, IndexTableName, MetricsTableName return this
// descriptor's three backend table names.
func (d TableDescriptor) DataTableName() string    { return names.DataTable(d.Schema, d.Table) }
func (d TableDescriptor) IndexTableName() string   { return names.IndexTable(d.Schema, d.Table) }
func (d TableDescriptor) MetricsTableName() string { return names.MetricsTable(d.Schema, d.Table) }

// Validate checks the descriptor for misconfiguration: a precondition
// violation to catch at schema-build time, not a runtime error path.
func (d TableDescriptor) Validate() error {
	if d.Table == "" {
		return errs.New(errs.Misconfiguration, "TableDescriptor.Validate", "table name must be set")
	}
	if d.RowIDColumn == "" {
		return errs.New(errs.Misconfiguration, "TableDescriptor.Validate", "row-ID column must be set")
	}
	seen := make(map[string]bool)
	for _, c := range d.Columns {
		key := c.Family + "\x00" + c.Qualifier
		if seen[key] {
			return errs.New(errs.Misconfiguration, "TableDescriptor.Validate",
				fmt.Sprintf("duplicate column (%s,%s)", c.Family, c.Qualifier))
		}
		seen[key] = true
		if c.Indexed && c.Type.IsArray() && c.Type.Elem == c.Type.Kind {
			return errs.New(errs.Misconfiguration, "TableDescriptor.Validate",
				fmt.Sprintf("column %s has invalid array element type", c.Name))
		}
	}
	return nil
}

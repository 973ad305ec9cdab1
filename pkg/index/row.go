package index

import "github.com/etmarx/presto-accumulo/pkg/rowcodec"

// ColumnValue is one column's logical value within a Row being indexed.
type ColumnValue struct {
	Family    string
	Qualifier string
	Value     rowcodec.Value
}

// Row is a logical mutation against a user table: a row-ID plus the
// column values carried on it.
type Row struct {
	ID      []byte
	Columns []ColumnValue
}

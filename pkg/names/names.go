// Package names centralizes the backend table-naming and sentinel-byte
// conventions shared by the KV adapter, the Indexer, and the split
// planner.
package names

import "strings"

const (
	indexSuffix   = "_idx"
	metricsSuffix = "_idx_metrics"
	locsSuffix    = "_idx_locs"
)

// DataTable returns the data table's backend name: "schema.table", or
// bare "table" when schema is "default".
func DataTable(schema, table string) string {
	if schema == "" || schema == "default" {
		return table
	}
	return schema + "." + table
}

// IndexTable returns the inverted-index table name for a user table.
func IndexTable(schema, table string) string {
	return DataTable(schema, table) + indexSuffix
}

// MetricsTable returns the statistics table name for a user table.
func MetricsTable(schema, table string) string {
	return DataTable(schema, table) + metricsSuffix
}

// TabletLocationsTable returns the reserved table holding tablet
// boundary -> host:port rows for a user table — a stand-in for
// scanning Accumulo's own catalog/!METADATA table.
func TabletLocationsTable(schema, table string) string {
	return DataTable(schema, table) + locsSuffix
}

// IsMetricsTable reports whether name is a metrics table, so the
// adapter knows to install the summing combiner at open time.
func IsMetricsTable(name string) bool {
	return strings.HasSuffix(name, metricsSuffix)
}

// IsTabletLocationsTable reports whether name is a tablet-locations
// table.
func IsTabletLocationsTable(name string) bool {
	return strings.HasSuffix(name, locsSuffix)
}

// IndexFamily returns the index column family for an indexed source
// column (family, qualifier): the byte concatenation f || "_" || q.
func IndexFamily(family, qualifier string) string {
	return family + "_" + qualifier
}

// Sentinel bytes for the metrics table.
var (
	MetricsTableRowID = []byte("___METRICS_TABLE___")
	MetricsTableRowsCF = []byte("___rows___")
	CardinalityCQ      = []byte("___card___")
	FirstRowCQ          = []byte("___first_row___")
	LastRowCQ           = []byte("___last_row___")
)

// LocalityGroupName is the locality-group name for an indexed column:
// the same family string used for the index/metrics cells under that
// column, "f_q".
func LocalityGroupName(family, qualifier string) string {
	return IndexFamily(family, qualifier)
}

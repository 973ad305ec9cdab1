// Package kvstore is the KV adapter: it abstracts the sorted,
// distributed key/value store the connector writes into and reads
// from. Cells are four-tuples (row, family, qualifier, value); every
// table the connector touches — the data table, the inverted index,
// and the metrics table — is one sorted keyspace.
//
// The adapter is backed by github.com/cockroachdb/pebble, one *pebble.DB
// per logical table, opened lazily and cached for the adapter's
// lifetime. Accumulo's notion of a "tablet" (a contiguous key range
// owned by one tablet server) is modeled as rows in a reserved
// "<table>_idx_locs" table holding (end_key) -> host:port, scanned the
// same way a real deployment would scan Accumulo's metadata table.
// Accumulo's server-side summing combiner is modeled as a pebble.Merger
// installed on the metrics table at open time (combiner.go).
package kvstore

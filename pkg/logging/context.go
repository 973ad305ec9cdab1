package logging

import "log/slog"

// WithTable returns a logger scoped to a data/index/metrics table name.
func WithTable(table string) *slog.Logger {
	return GetLogger().With("table", table)
}

// WithIndexColumn returns a logger scoped to an indexed (family,
// qualifier) pair.
func WithIndexColumn(familyQualifier string) *slog.Logger {
	return GetLogger().With("index_column", familyQualifier)
}

// WithBatch returns a logger scoped to a writer batch, identified by a
// correlation id assigned at batch-open time.
func WithBatch(batchID string) *slog.Logger {
	return GetLogger().With("batch_id", batchID)
}

// WithPlan returns a logger scoped to one split-planning call.
func WithPlan(table string, planID string) *slog.Logger {
	return GetLogger().With("table", table, "plan_id", planID)
}

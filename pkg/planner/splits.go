package planner

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/etmarx/presto-accumulo/pkg/index"
	"github.com/etmarx/presto-accumulo/pkg/kvstore"
	"github.com/etmarx/presto-accumulo/pkg/logging"
	"github.com/etmarx/presto-accumulo/pkg/names"
	"github.com/etmarx/presto-accumulo/pkg/rowcodec"
)

// indexProbe pairs one indexed constraint with the storage-ranges its
// domain translates to and the summed cardinality observed for those
// ranges.
type indexProbe struct {
	constraint  ColumnConstraint
	ranges      []kvstore.KeyRange
	cardinality int64
}

// GetTabletSplits is the split planner's single entry point. It walks
// the row-ID pushdown ranges through an optional index probe, aligns
// the result to tablet boundaries, optionally bisects it into
// artificial splits, and finally bins the ranges for parallel scanning.
func GetTabletSplits(
	ctx context.Context,
	kv *kvstore.Adapter,
	codec rowcodec.Codec,
	sess Session,
	schema, table string,
	rowType rowcodec.Type,
	rowDomain Domain,
	constraints []ColumnConstraint,
) ([]TabletSplitMetadata, error) {
	desc := index.TableDescriptor{Schema: schema, Table: table}

	// Step 1: row-ID pushdown ranges.
	pushdownRanges, err := rowPushdownRanges(codec, rowType, sess, rowDomain)
	if err != nil {
		return nil, &PlannerError{Op: "row_pushdown_ranges", Cause: err}
	}

	indexed := indexedConstraints(constraints)
	candidateRanges := pushdownRanges

	if sess.SecondaryIndexEnabled && len(indexed) > 0 {
		// Step 3: cardinality probe.
		probes, n, empty, err := cardinalityProbe(ctx, kv, codec, desc, indexed)
		if err != nil {
			return nil, &PlannerError{Op: "cardinality_probe", Cause: err}
		}
		if empty {
			return []TabletSplitMetadata{}, nil
		}

		// Step 4: intersect or single-probe.
		resolved, err := resolveCandidateRows(ctx, kv, desc, probes, n, sess, pushdownRanges)
		if err != nil {
			return nil, &PlannerError{Op: "resolve_candidate_rows", Cause: err}
		}
		if resolved != nil {
			candidateRanges = resolved
		}
	}

	// Step 5: tablet splitting.
	if sess.OptimizeRangeSplits {
		split, err := splitByTablets(ctx, kv, schema, table, candidateRanges)
		if err != nil {
			return nil, &PlannerError{Op: "split_range_by_tablets", Cause: err}
		}
		candidateRanges = split
	}

	// Step 6: artificial splits.
	if sess.NumArtificialSplits > 0 {
		artificial, err := applyArtificialSplits(ctx, kv, desc, candidateRanges, sess.NumArtificialSplits)
		if err != nil {
			return nil, &PlannerError{Op: "artificial_splits", Cause: err}
		}
		candidateRanges = artificial
	}

	// Step 7: binning.
	return binSplits(ctx, kv, schema, table, candidateRanges, sess.RangesPerSplit), nil
}

func rowPushdownRanges(codec rowcodec.Codec, rowType rowcodec.Type, sess Session, d Domain) ([]kvstore.KeyRange, error) {
	if !sess.OptimizeRangePredicatePushdown || len(d) == 0 {
		return []kvstore.KeyRange{kvstore.UnboundedRange()}, nil
	}
	return RangeFromDomain(codec, rowType, d)
}

func indexedConstraints(constraints []ColumnConstraint) []ColumnConstraint {
	var out []ColumnConstraint
	for _, c := range constraints {
		if c.Indexed {
			out = append(out, c)
		}
	}
	return out
}

// cardinalityProbe scans T_idx_metrics for each indexed constraint,
// sums the decimal ___card___ deltas over its domain's storage-ranges,
// and sorts the probes ascending by cardinality.
func cardinalityProbe(ctx context.Context, kv *kvstore.Adapter, codec rowcodec.Codec, desc index.TableDescriptor, indexed []ColumnConstraint) ([]indexProbe, int64, bool, error) {
	probes := make([]indexProbe, 0, len(indexed))
	for _, c := range indexed {
		ranges, err := RangeFromDomain(codec, c.Type, c.Domain)
		if err != nil {
			return nil, 0, false, err
		}
		total, err := sumCardinality(ctx, kv, desc.MetricsTableName(), []byte(c.IndexFamily()), ranges)
		if err != nil {
			return nil, 0, false, err
		}
		probes = append(probes, indexProbe{constraint: c, ranges: ranges, cardinality: total})
	}

	sort.Slice(probes, func(i, j int) bool { return probes[i].cardinality < probes[j].cardinality })

	n, err := index.RowCount(ctx, kv, desc)
	if err != nil {
		return nil, 0, false, err
	}

	if len(probes) > 0 && probes[0].cardinality == 0 {
		logging.WithTable(desc.Table).Debug("zero-cardinality short-circuit", "column", probes[0].constraint.Qualifier)
		return probes, n, true, nil
	}
	return probes, n, false, nil
}

// sumCardinality probes every one of ranges in parallel (the scan over
// T_idx_metrics is read-only and set-theoretic, so cross-range order
// doesn't matter) and sums the ___card___ deltas found.
func sumCardinality(ctx context.Context, kv *kvstore.Adapter, metricsTable string, family []byte, ranges []kvstore.KeyRange) (int64, error) {
	cells, err := kv.BatchScan(ctx, metricsTable, ranges, family, 0)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, c := range cells {
		if !bytes.Equal(c.Qualifier, names.CardinalityCQ) {
			continue
		}
		n, err := parseCounter(c.Value)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func parseCounter(b []byte) (int64, error) {
	var n int64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("planner: malformed counter cell %q", b)
		}
		n = n*10 + int64(c-'0')
	}
	return n, nil
}

// resolveCandidateRows implements step 4: decides intersection vs
// single-probe mode from the cardinality ratio, resolves the row-ID
// set, and applies the resulting-set ratio gate against N. Returns nil
// (meaning "use pushdownRanges unchanged") when the ratio gate falls
// back to the row-ID pushdown ranges.
func resolveCandidateRows(ctx context.Context, kv *kvstore.Adapter, desc index.TableDescriptor, probes []indexProbe, n int64, sess Session, pushdownRanges []kvstore.KeyRange) ([]kvstore.KeyRange, error) {
	if n == 0 || len(probes) == 0 {
		return nil, nil
	}

	minRatio := float64(probes[0].cardinality) / float64(n)

	var rowIDs *rowIDSet
	var err error
	if minRatio > sess.LowestCardinalityThreshold {
		rowIDs, err = intersectProbes(ctx, kv, desc, probes, pushdownRanges)
	} else {
		rowIDs, err = probeRowIDs(ctx, kv, desc, probes[0], pushdownRanges)
	}
	if err != nil {
		return nil, err
	}

	m := rowIDs.Len()
	ratio := float64(m) / float64(n)
	if ratio >= sess.IndexRatio {
		return nil, nil
	}

	ranges := make([]kvstore.KeyRange, 0, m)
	rowIDs.Each(func(id []byte) {
		ranges = append(ranges, kvstore.KeyRange{Start: id, End: id, StartInclusive: true, EndInclusive: true})
	})
	return ranges, nil
}

// probeRowIDs scans T_idx for one indexed constraint's storage-ranges,
// in parallel across ranges the way Accumulo's BatchScanner would, and
// returns the row-IDs (the cell qualifiers) whose contributing value
// falls in range and whose row-ID falls within at least one row-ID
// pushdown range.
func probeRowIDs(ctx context.Context, kv *kvstore.Adapter, desc index.TableDescriptor, p indexProbe, pushdownRanges []kvstore.KeyRange) (*rowIDSet, error) {
	family := []byte(p.constraint.IndexFamily())
	cells, err := kv.BatchScan(ctx, desc.IndexTableName(), p.ranges, family, 0)
	if err != nil {
		return nil, err
	}
	out := newRowIDSet()
	for _, c := range cells {
		if !InRangeSet(pushdownRanges, c.Qualifier) {
			continue
		}
		out.Add(c.Qualifier)
	}
	return out, nil
}

func intersectProbes(ctx context.Context, kv *kvstore.Adapter, desc index.TableDescriptor, probes []indexProbe, pushdownRanges []kvstore.KeyRange) (*rowIDSet, error) {
	result, err := probeRowIDs(ctx, kv, desc, probes[0], pushdownRanges)
	if err != nil {
		return nil, err
	}
	for _, p := range probes[1:] {
		next, err := probeRowIDs(ctx, kv, desc, p, pushdownRanges)
		if err != nil {
			return nil, err
		}
		result = result.Intersect(next)
	}
	return result, nil
}

func splitByTablets(ctx context.Context, kv *kvstore.Adapter, schema, table string, ranges []kvstore.KeyRange) ([]kvstore.KeyRange, error) {
	var out []kvstore.KeyRange
	for _, r := range ranges {
		sub, err := kv.SplitRangeByTablets(ctx, schema, table, r)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

// binSplits shuffles ranges and bins them in order, rangesPerSplit at
// a time, each pinned to the table's default tablet location.
func binSplits(ctx context.Context, kv *kvstore.Adapter, schema, table string, ranges []kvstore.KeyRange, rangesPerSplit int) []TabletSplitMetadata {
	if rangesPerSplit <= 0 {
		rangesPerSplit = 1
	}

	shuffled := make([]kvstore.KeyRange, len(ranges))
	copy(shuffled, ranges)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	host, err := kv.TabletLocations(ctx, schema, table, nil)
	if err != nil {
		host = "unknown:0"
	}

	var out []TabletSplitMetadata
	for i := 0; i < len(shuffled); i += rangesPerSplit {
		end := i + rangesPerSplit
		if end > len(shuffled) {
			end = len(shuffled)
		}
		out = append(out, TabletSplitMetadata{PreferredHost: host, Ranges: shuffled[i:end]})
	}
	return out
}

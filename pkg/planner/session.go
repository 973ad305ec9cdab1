// Package planner implements the index-driven split planner: it turns
// a predicate on a user table into a list of scan ranges, consulting
// the secondary index's cardinality statistics to decide whether a
// full scan or an index probe wins.
package planner

// Session carries the planning knobs a caller tunes per query.
type Session struct {
	OptimizeRangePredicatePushdown bool
	SecondaryIndexEnabled          bool
	OptimizeRangeSplits            bool
	LowestCardinalityThreshold     float64 // in [0,1]
	IndexRatio                     float64 // in [0,1]
	NumArtificialSplits            int     // >= 0
	RangesPerSplit                 int     // > 0
}

// DefaultSession returns knob values matching the source's defaults: all
// optimizations on, conservative thresholds, no artificial splitting.
func DefaultSession() Session {
	return Session{
		OptimizeRangePredicatePushdown: true,
		SecondaryIndexEnabled:          true,
		OptimizeRangeSplits:            true,
		LowestCardinalityThreshold:     0.01,
		IndexRatio:                     0.2,
		NumArtificialSplits:            0,
		RangesPerSplit:                 10,
	}
}

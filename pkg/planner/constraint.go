package planner

import (
	"github.com/etmarx/presto-accumulo/pkg/kvstore"
	"github.com/etmarx/presto-accumulo/pkg/names"
	"github.com/etmarx/presto-accumulo/pkg/rowcodec"
)

// ColumnConstraint is one predicate leg: a column plus the domain the
// query restricts it to.
type ColumnConstraint struct {
	Family    string
	Qualifier string
	Indexed   bool
	Type      rowcodec.Type
	Domain    Domain
}

// IndexFamily is this constraint's index-table/metrics-table family.
func (c ColumnConstraint) IndexFamily() string {
	return names.IndexFamily(c.Family, c.Qualifier)
}

// TabletSplitMetadata is one unit of parallel scan work the planner
// emits: a preferred host plus the ranges to scan there.
type TabletSplitMetadata struct {
	PreferredHost string
	Ranges        []kvstore.KeyRange
}

package planner

import "fmt"

// PlannerError is the single error type that crosses the planner's
// boundary: any backend error encountered while computing a plan
// surfaces wrapped in one of these, naming the step that failed, and
// GetTabletSplits never returns a partial plan alongside an error.
type PlannerError struct {
	Op    string
	Cause error
}

func (e *PlannerError) Error() string {
	return fmt.Sprintf("planner: %s: %v", e.Op, e.Cause)
}

func (e *PlannerError) Unwrap() error { return e.Cause }

package apexlog

// aggregate runs the single post-order traversal described in §4.4,
// computing duration.self/duration.total and rolling up DML/SOQL/SOSL
// operation and row counts and the thrown-exception count, then finalises
// root-level session state.
func aggregate(root *Root) {
	for _, child := range root.Children {
		aggregateEvent(child)
	}

	finalizeRoot(root)
}

// aggregateEvent aggregates e's subtree bottom-up and returns nothing; all
// results are written onto e itself, read back by the caller via e's
// fields.
func aggregateEvent(e *Event) {
	for _, child := range e.Children {
		aggregateEvent(child)
	}

	if e.ExitStamp != nil && e.Duration.Total == 0 {
		e.Duration.Total = *e.ExitStamp - e.Timestamp
	}

	e.Duration.Self = e.Duration.Total

	for _, child := range e.Children {
		e.Duration.Self -= child.Duration.Total

		e.DMLCount.Total += child.DMLCount.Total
		e.SOQLCount.Total += child.SOQLCount.Total
		e.SOSLCount.Total += child.SOSLCount.Total
		e.DMLRowCount.Total += child.DMLRowCount.Total
		e.SOQLRowCount.Total += child.SOQLRowCount.Total
		e.SOSLRowCount.Total += child.SOSLRowCount.Total
		e.TotalThrownCount += child.TotalThrownCount
	}

	e.DMLCount.Total += e.DMLCount.Self
	e.SOQLCount.Total += e.SOQLCount.Self
	e.SOSLCount.Total += e.SOSLCount.Self
	e.DMLRowCount.Total += e.DMLRowCount.Self
	e.SOQLRowCount.Total += e.SOQLRowCount.Self
	e.SOSLRowCount.Total += e.SOSLRowCount.Self

	// Pseudo-exit cascades and other borrowed-timestamp windows can make a
	// child's total slightly overshoot its parent's; clamp rather than
	// treat as an error (§4.4, §8).
	if e.Duration.Self < 0 {
		e.Duration.Self = 0
	}
}

// finalizeRoot derives Root.Timestamp, Root.ExitStamp, Root.ExecutionEndTime
// and Root.StartTime from the already-aggregated top-level children (§4.4).
func finalizeRoot(root *Root) {
	if len(root.Children) == 0 {
		return
	}

	root.Timestamp = root.Children[0].Timestamp

	for i := len(root.Children) - 1; i >= 0; i-- {
		c := root.Children[i]
		if c.ExitStamp != nil && c.Duration.Total > 0 {
			root.ExitStamp = c.ExitStamp
			root.ExecutionEndTime = c.ExitStamp

			break
		}
	}

	// Root is not visited by aggregateEvent (it has no duration of its own
	// to compute), but its count rollups still need every top-level child's
	// already-aggregated Total folded in (§8: "dml_count.total ... equal the
	// respective begin-event counts in the subtree", and root's subtree is
	// the whole tree).
	for _, c := range root.Children {
		root.DMLCount.Total += c.DMLCount.Total
		root.SOQLCount.Total += c.SOQLCount.Total
		root.SOSLCount.Total += c.SOSLCount.Total
		root.DMLRowCount.Total += c.DMLRowCount.Total
		root.SOQLRowCount.Total += c.SOQLRowCount.Total
		root.SOSLRowCount.Total += c.SOSLRowCount.Total
		root.TotalThrownCount += c.TotalThrownCount
	}
}

package apexlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateEvent_SelfClampedNonNegative(t *testing.T) {
	// A borrowed exit_stamp (pseudo-exit cascade) can make a child's total
	// overshoot its parent's; self must clamp to 0, not go negative (§4.4, §8).
	parentExit := int64(1000)
	childExit := int64(5000)

	parent := &Event{Timestamp: 0, ExitStamp: &parentExit}
	child := &Event{Timestamp: 0, ExitStamp: &childExit}
	parent.addChild(child)

	aggregateEvent(parent)

	assert.EqualValues(t, 0, parent.Duration.Self)
}

func TestAggregateEvent_RowCountRollup(t *testing.T) {
	dmlExit := int64(100)

	dml := &Event{Timestamp: 0, ExitStamp: &dmlExit, DMLRowCount: Counts{Self: 5}}
	parent := &Event{Timestamp: 0}
	parent.addChild(dml)

	aggregateEvent(parent)

	assert.EqualValues(t, 5, dml.DMLRowCount.Total)
	assert.EqualValues(t, 5, parent.DMLRowCount.Total)
}

func TestAggregate_RootRollsUpTopLevelCounts(t *testing.T) {
	root := &Root{}

	a := &Event{Timestamp: 0, SOQLCount: Counts{Self: 1}}
	b := &Event{Timestamp: 1, DMLCount: Counts{Self: 1}}
	root.Children = []*Event{a, b}
	a.Parent, b.Parent = &root.Event, &root.Event

	aggregate(root)

	assert.EqualValues(t, 1, root.SOQLCount.Total)
	assert.EqualValues(t, 1, root.DMLCount.Total)
}

func TestFinalizeRoot_EmptyTree(t *testing.T) {
	root := &Root{}
	finalizeRoot(root)

	assert.Nil(t, root.ExitStamp)
	assert.Nil(t, root.ExecutionEndTime)
}

func TestFinalizeRoot_SkipsTrailingZeroDurationSiblings(t *testing.T) {
	firstExit := int64(2000)

	first := &Event{Timestamp: 1000, ExitStamp: &firstExit, Duration: Duration{Total: 1000}}
	// A trailing sibling with no recorded duration (e.g. a leaf exit event)
	// must not win the "last non-zero-duration child" scan.
	trailing := &Event{Timestamp: 2000}

	root := &Root{}
	root.Children = []*Event{first, trailing}

	finalizeRoot(root)

	require.NotNil(t, root.ExitStamp)
	assert.EqualValues(t, 2000, *root.ExitStamp)
	assert.Equal(t, root.ExitStamp, root.ExecutionEndTime)
}

package apexlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryPlan(t *testing.T) {
	text := "Index on Account : [Name, Industry], cardinality: 42, sobjectCardinality: 1000, relativeCost 1.5"

	plan := parseQueryPlan(text)

	require.NotNil(t, plan)
	assert.Equal(t, "Index", plan.LeadingOperationType)
	assert.Equal(t, "Account", plan.SObjectType)
	assert.Equal(t, []string{"Name", "Industry"}, plan.Fields)
	assert.EqualValues(t, 42, plan.Cardinality)
	assert.EqualValues(t, 1000, plan.SObjectCardinality)
	assert.InDelta(t, 1.5, plan.RelativeCost, 0.0001)
}

func TestParseQueryPlan_NoMatch(t *testing.T) {
	assert.Nil(t, parseQueryPlan("not a query plan payload"))
}

func TestParseQueryPlan_EmptyFieldList(t *testing.T) {
	text := "TableScan on Contact : [], cardinality: 0, sobjectCardinality: 0, relativeCost 0"

	plan := parseQueryPlan(text)

	require.NotNil(t, plan)
	assert.Empty(t, plan.Fields)
}

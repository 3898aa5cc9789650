package apexlog

import (
	"regexp"
	"strconv"
	"strings"
)

// queryPlanPattern matches a SOQL_EXECUTE_EXPLAIN payload (§4.5):
//
//	<LeadingOp> on <SObject> : [<field1>, <field2>], cardinality: <n>, sobjectCardinality: <n>, relativeCost <n>
var queryPlanPattern = regexp.MustCompile(
	`^(.*?)\s+on\s+(\S+)\s*:\s*\[(.*?)\]\s*,\s*cardinality:\s*(\d+)\s*,\s*sobjectCardinality:\s*(\d+)\s*,\s*relativeCost\s+([0-9.]+)`,
)

// parseQueryPlan parses a SOQL_EXECUTE_EXPLAIN payload into a QueryPlanRow.
// Returns nil if the text does not match the expected shape (a payload
// parse error per §7; the event is kept without a query plan attached).
func parseQueryPlan(text string) *QueryPlanRow {
	m := queryPlanPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	cardinality, err := strconv.ParseInt(m[4], 10, 64)
	if err != nil {
		return nil
	}

	sobjCardinality, err := strconv.ParseInt(m[5], 10, 64)
	if err != nil {
		return nil
	}

	relativeCost, err := strconv.ParseFloat(m[6], 64)
	if err != nil {
		return nil
	}

	var fields []string

	for _, f := range strings.Split(m[3], ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			fields = append(fields, f)
		}
	}

	return &QueryPlanRow{
		Cardinality:         cardinality,
		Fields:              fields,
		LeadingOperationType: strings.TrimSpace(m[1]),
		RelativeCost:        relativeCost,
		SObjectCardinality:  sobjCardinality,
		SObjectType:         m[2],
	}
}

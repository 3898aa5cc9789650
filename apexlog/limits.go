package apexlog

import (
	"strconv"
	"strings"
)

// limitKeyField maps the literal key phrase the Apex runtime prints in a
// LIMIT_USAGE_FOR_NS block to the GovernorLimits field it updates (§4.5,
// §3). The phrases are fixed across API versions.
var limitKeyField = map[string]func(*GovernorLimits) *LimitPair{
	"Number of SOQL queries":                              func(g *GovernorLimits) *LimitPair { return &g.SOQLQueries },
	"Number of query rows":                                func(g *GovernorLimits) *LimitPair { return &g.QueryRows },
	"Number of SOSL queries":                               func(g *GovernorLimits) *LimitPair { return &g.SOSLQueries },
	"Number of DML statements":                             func(g *GovernorLimits) *LimitPair { return &g.DMLStatements },
	"Number of Publish Immediate DML":                      func(g *GovernorLimits) *LimitPair { return &g.PublishImmediateDML },
	"Number of DML rows":                                   func(g *GovernorLimits) *LimitPair { return &g.DMLRows },
	"Maximum CPU time":                                     func(g *GovernorLimits) *LimitPair { return &g.CPUTime },
	"Maximum heap size":                                    func(g *GovernorLimits) *LimitPair { return &g.HeapSize },
	"Number of callouts":                                   func(g *GovernorLimits) *LimitPair { return &g.Callouts },
	"Number of Email Invocations":                          func(g *GovernorLimits) *LimitPair { return &g.EmailInvocations },
	"Number of future calls":                               func(g *GovernorLimits) *LimitPair { return &g.FutureCalls },
	"Number of queueable jobs added to the queue":          func(g *GovernorLimits) *LimitPair { return &g.QueueableJobsAddedToQueue },
	"Number of Mobile Apex push calls":                     func(g *GovernorLimits) *LimitPair { return &g.MobileApexPushCalls },
}

// applyLimitUsagePayload parses the accumulated continuation text of a
// LIMIT_USAGE_FOR_NS event (§4.5) and records a snapshot on root. Invoked
// from the event's on_after hook, once continuation attachment has finished
// accumulating every line of the block.
//
// Expected text shape:
//
//	(namespace)
//	  Number of SOQL queries: 3 out of 100
//	  Maximum CPU time: 250 out of 10000
func applyLimitUsagePayload(root *Root, e *Event) {
	lines := strings.Split(e.Text, "\n")
	if len(lines) == 0 {
		return
	}

	namespace := extractParenthesised(lines[0])
	if namespace == "" {
		namespace = "default"
	}

	var limits GovernorLimits

	for _, line := range lines[1:] {
		key, pair, ok := parseLimitLine(line)
		if !ok {
			continue // payload parse error: skip this line, keep partial limits (§7)
		}

		if setter, known := limitKeyField[key]; known {
			*setter(&limits) = pair
		}
	}

	root.GovernorLimits.ByNamespace[namespace] = limits
	root.GovernorLimits.Snapshots = append(root.GovernorLimits.Snapshots, LimitSnapshot{
		Timestamp: e.Timestamp,
		Namespace: namespace,
		Limits:    limits,
	})
}

// extractParenthesised returns the text between the first "(" and ")" on
// the line, or "" if not found.
func extractParenthesised(line string) string {
	open := strings.IndexByte(line, '(')
	if open < 0 {
		return ""
	}

	closeIdx := strings.IndexByte(line[open:], ')')
	if closeIdx < 0 {
		return ""
	}

	return strings.TrimSpace(line[open+1 : open+closeIdx])
}

// parseLimitLine parses one "<key>: <used> out of <limit>" line, after
// normalising "out of" to "/" and stripping the "CLOSE TO LIMIT" marker and
// surrounding whitespace (§4.5).
func parseLimitLine(line string) (key string, pair LimitPair, ok bool) {
	cleaned := strings.TrimSpace(line)
	if idx := strings.Index(cleaned, "*******"); idx >= 0 {
		cleaned = strings.TrimSpace(cleaned[:idx])
	}

	cleaned = strings.ReplaceAll(cleaned, "out of", "/")

	colon := strings.IndexByte(cleaned, ':')
	if colon < 0 {
		return "", LimitPair{}, false
	}

	key = strings.TrimSpace(cleaned[:colon])
	rest := strings.TrimSpace(cleaned[colon+1:])

	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return "", LimitPair{}, false
	}

	used, err := strconv.ParseInt(strings.TrimSpace(rest[:slash]), 10, 64)
	if err != nil {
		return "", LimitPair{}, false
	}

	limit, err := strconv.ParseInt(strings.TrimSpace(rest[slash+1:]), 10, 64)
	if err != nil {
		return "", LimitPair{}, false
	}

	return key, LimitPair{Used: used, Limit: limit}, true
}

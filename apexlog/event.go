package apexlog

// Counts is a self/total pair used for DML, SOQL, and SOSL operation and row
// counters on an Event. Self is the count contributed directly by the event;
// Total is Self plus the sum of every descendant's Total (set during
// aggregation, see aggregate.go).
type Counts struct {
	Self  int64
	Total int64
}

// Duration is a self/total wall-clock pair measured in nanoseconds.
type Duration struct {
	Self  int64
	Total int64
}

// Event is the universal node of the parsed call tree, rooted at a synthetic
// Root (see Root). Every line of a debug log that resolves to a known event
// type (Kind != KindUnknown) produces exactly one Event; lines that are
// neither valid events nor continuation text produce no Event at all and are
// instead recorded as a parsing error on the Root.
type Event struct {
	Kind Kind

	// Timestamp is the nanosecond offset taken from the parenthesised
	// portion of the line's leading token, e.g. "(1234567)".
	Timestamp int64

	// ExitStamp is set once a matching exit event (or, for pseudo-exits and
	// ENTERING_MANAGED_PKG, the following event) is observed. Nil until
	// then.
	ExitStamp *int64

	// LineNumber is the Apex source line parsed from a "[n]" token, 0 if
	// absent, or -1 if the token literal was "[EXTERNAL]".
	LineNumber int

	LogLine string // raw source line, for diagnostic display
	Text    string // display text; see newEvent for per-kind composition

	Namespace     string
	Category      string
	DebugCategory string
	CPUType       string
	Suffix        string

	HasValidSymbols bool
	Discontinuity   bool
	IsTruncated     bool

	AcceptsText    bool
	IsExit         bool
	IsParent       bool
	NextLineIsExit bool
	ExitTypes      map[Kind]bool

	Duration Duration

	DMLCount    Counts
	SOQLCount   Counts
	SOSLCount   Counts
	DMLRowCount  Counts
	SOQLRowCount Counts
	SOSLRowCount Counts

	TotalThrownCount int64

	// QueryPlan is populated only on SOQL_EXECUTE_EXPLAIN events (§4.5).
	QueryPlan *QueryPlanRow

	Parent   *Event
	Children []*Event
}

// ExternalLineNumber is the sentinel line number used when a log line's "[n]"
// token literal is "[EXTERNAL]" (the frame originates outside the current
// Apex execution context, e.g. a managed-package boundary).
const ExternalLineNumber = -1

// addChild appends c as the last child of e and wires the back-reference.
// The call sites in builder.go always append in arrival order, which is also
// non-decreasing timestamp order since log lines are themselves
// non-decreasing in time (§3 invariants).
func (e *Event) addChild(c *Event) {
	c.Parent = e
	e.Children = append(e.Children, c)
}

// Severity classifies a LogIssue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// LogIssue is a structured diagnostic surfaced to external consumers
// alongside the call tree, distinct from the free-form strings in
// Root.ParsingErrors. Issues are produced by the embedded payload parsers
// (§4.5): uncaught LimitExceptions, fatal errors, and truncation markers.
type LogIssue struct {
	Timestamp int64
	Summary   string
	Message   string
	Severity  Severity
}

// LimitPair records governor-limit usage against its ceiling for a single
// counter, e.g. {Used: 3, Limit: 100} for "3 out of 100".
type LimitPair struct {
	Used  int64
	Limit int64
}

// GovernorLimits is a snapshot of the 13 governor-limit counters the Apex
// runtime reports in a LIMIT_USAGE_FOR_NS block.
type GovernorLimits struct {
	SOQLQueries              LimitPair
	SOSLQueries              LimitPair
	QueryRows                LimitPair
	DMLStatements            LimitPair
	PublishImmediateDML      LimitPair
	DMLRows                  LimitPair
	CPUTime                  LimitPair
	HeapSize                 LimitPair
	Callouts                 LimitPair
	EmailInvocations         LimitPair
	FutureCalls              LimitPair
	QueueableJobsAddedToQueue LimitPair
	MobileApexPushCalls      LimitPair
}

// LimitSnapshot is one parsed LIMIT_USAGE_FOR_NS block, ordered by Timestamp
// in Root.GovernorLimits.Snapshots.
type LimitSnapshot struct {
	Timestamp int64
	Namespace string
	Limits    GovernorLimits
}

// GovernorLimitState is the root's aggregate view of every limits snapshot
// observed during the parse: the latest snapshot per namespace, and the
// full ordered history.
type GovernorLimitState struct {
	ByNamespace map[string]GovernorLimits
	Snapshots   []LimitSnapshot
}

// QueryPlanRow is the structured form of a SOQL_EXECUTE_EXPLAIN payload.
type QueryPlanRow struct {
	Cardinality          int64
	Fields                []string
	LeadingOperationType  string
	RelativeCost          float64
	SObjectCardinality    int64
	SObjectType           string
}

// Root is the synthetic node that owns every event parsed from a log. It is
// created before parsing begins (see Parse) and carries session-level state
// in addition to its Children.
type Root struct {
	Event // embeds the same fields as any node; Kind is always KindUnknown

	ByteSize int64

	// DebugLevels are the "x,y" category declarations found in the log
	// preamble (e.g. "APEX_CODE,FINE;APEX_PROFILING,INFO"), kept verbatim
	// per declaration line.
	DebugLevels []string

	Namespaces map[string]bool

	// namespaceRefs counts how many events currently carry each namespace,
	// so reviseNamespace can drop a namespace from Namespaces once a
	// NamespacePattern override leaves nothing referencing it anymore.
	namespaceRefs map[string]int

	ParsingErrors []string
	LogIssues     []LogIssue

	GovernorLimits GovernorLimitState

	// StartTime is milliseconds since midnight, parsed from the first
	// child's wall-clock prefix ("HH:MM:SS.f"). Nil if no children were
	// parsed.
	StartTime *int64

	// ExecutionEndTime mirrors the root's exit-stamp logic (§4.4): the
	// exit stamp of the last non-zero-duration child, scanning from the
	// right to skip trailing no-op siblings.
	ExecutionEndTime *int64
}

// namespaceSet returns root.Namespaces, allocating it on first use.
func (r *Root) namespaceSet() map[string]bool {
	if r.Namespaces == nil {
		r.Namespaces = make(map[string]bool)
	}

	return r.Namespaces
}

func (r *Root) observeNamespace(ns string) {
	if ns == "" {
		return
	}

	if r.namespaceRefs == nil {
		r.namespaceRefs = make(map[string]int)
	}

	r.namespaceRefs[ns]++
	r.namespaceSet()[ns] = true
}

// reviseNamespace replaces a namespace already recorded by observeNamespace
// with a new one - used when a configured NamespacePattern overrides the
// built-in heuristic's result after the event was first observed. old is
// dropped from Namespaces once no event references it anymore.
func (r *Root) reviseNamespace(old, newNs string) {
	if old == newNs {
		return
	}

	if old != "" && r.namespaceRefs[old] > 0 {
		r.namespaceRefs[old]--

		if r.namespaceRefs[old] == 0 {
			delete(r.namespaceRefs, old)
			delete(r.Namespaces, old)
		}
	}

	r.observeNamespace(newNs)
}

package apexlog

// kindInfo holds the behavioural attributes that, in the source analyzer,
// lived on ~100 LogEvent subclasses. Here they are data: a closed table
// keyed by Kind, looked up once per event by newEvent. See design note in
// DESIGN.md — this is the tagged-union-plus-behaviour-table replacement for
// deep inheritance (spec §9).
type kindInfo struct {
	isParent       bool
	isExit         bool
	acceptsText    bool
	nextLineIsExit bool
	discontinuity  bool
	exitTypes      []Kind
	category       string
	debugCategory  string
	cpuType        string
}

// acceptsTextKinds are the event types that legitimately own multi-line
// continuation payloads (§4.2).
var acceptsTextKinds = map[Kind]bool{
	KindLimitUsageForNS:         true,
	KindUserDebug:               true,
	KindVariableAssignment:      true,
	KindExceptionThrown:         true,
	KindFatalError:              true,
	KindValidationFormula:       true,
	KindWFFormula:               true,
	KindWFRuleFilter:            true,
	KindFlowElementError:        true,
	KindFlowStartInterviewsError: true,
	KindBulkHeapAllocate:        true,
	KindCumulativeProfiling:     true,
	KindEmailQueue:              true,
	KindStaticVariableList:      true,
	KindStackFrameVariableList:  true,
	KindWFFlowActionError:       true,
	KindWFFlowActionErrorDetail: true,
	KindTestingLimits:           true,
	KindValidationError:        true,
	KindVFPageMessage:           true,
}

// pseudoExitKinds are the workflow events whose frame is closed by the next
// event's timestamp rather than an explicit exit marker (§4.3, §6).
var pseudoExitKinds = map[Kind]bool{
	KindWFFieldUpdate:       true,
	KindWFEmailSent:         true,
	KindWFEmailAlert:        true,
	KindWFApproval:          true,
	KindWFApprovalSubmit:    true,
	KindWFEvalEntryCriteria: true,
	KindWFNextApprover:      true,
	KindWFProcessFound:      true,
	KindWFProcessNode:       true,
	KindWFRuleInvocation:    true,
	KindWFFormula:           true,
}

// parentExitPairs lists every (parent kind -> exit kinds) pair from the
// calling-convention table (§6), plus the reference's cumulative/profiling
// and explain/validation extensions. ENTERING_MANAGED_PKG deliberately has
// no exit type and is not listed here: lookupKindInfo marks it as a parent
// separately, and its frame is closed synthetically by the
// KindEnteringManagedPkg case of treeBuilder.runOnAfter.
var parentExitPairs = map[Kind][]Kind{
	KindMethodEntry:              {KindMethodExit},
	KindConstructorEntry:         {KindConstructorExit},
	KindSystemMethodEntry:        {KindSystemMethodExit},
	KindSystemConstructorEntry:   {KindSystemConstructorExit},
	KindSystemModeEnter:          {KindSystemModeExit},
	KindCodeUnitStarted:          {KindCodeUnitFinished},
	KindExecutionStarted:         {KindExecutionFinish},
	KindDMLBegin:                 {KindDMLEnd},
	KindSOQLExecuteBegin:         {KindSOQLExecuteEnd},
	KindSOSLExecuteBegin:         {KindSOSLExecuteEnd},
	KindQueryMoreBegin:           {KindQueryMoreEnd},
	KindCalloutRequest:           {KindCalloutResponse},
	KindNamedCredentialRequest:   {KindNamedCredentialResponse},
	KindFlowStartInterviewsBegin: {KindFlowStartInterviewsEnd},
	KindFlowCreateInterviewBegin: {KindFlowCreateInterviewEnd},
	KindFlowElementBegin:         {KindFlowElementEnd},
	KindFlowBulkElementBegin:     {KindFlowBulkElementEnd},
	KindWFCriteriaBegin:          {KindWFCriteriaEnd, KindWFRuleNotEvaluated},
	KindWFRuleEvalBegin:          {KindWFRuleEvalEnd},
	KindWFFlowActionBegin:        {KindWFFlowActionEnd},
	KindVFApexCallStart:          {KindVFApexCallEnd},
	KindCumulativeLimitUsage:     {KindCumulativeLimitUsageEnd},
	KindCumulativeProfilingBegin: {KindCumulativeProfilingEnd},
	KindDuplicateDetectionBegin:  {KindDuplicateDetectionEnd},
}

// exitKinds is the set of every kind that appears as an exit type anywhere
// in parentExitPairs, plus the pseudo-exit kinds (which are both parent and
// exit, §4.3).
var exitKinds = computeExitKinds()

func computeExitKinds() map[Kind]bool {
	out := make(map[Kind]bool)

	for _, exits := range parentExitPairs {
		for _, k := range exits {
			out[k] = true
		}
	}

	for k := range pseudoExitKinds {
		out[k] = true
	}

	return out
}

// categoryTable gives each parent/leaf kind a (category, debugCategory,
// cpuType) triple. Consumers outside THE CORE (flame charts, filters) key
// UI behaviour off these; the parser itself never interprets them. Unlisted
// kinds default to ("", "", "") in newEvent.
var categoryTable = map[Kind][3]string{
	KindMethodEntry:        {"Method", "APEX_CODE", "method"},
	KindMethodExit:         {"Method", "APEX_CODE", "method"},
	KindConstructorEntry:   {"Method", "APEX_CODE", "method"},
	KindConstructorExit:    {"Method", "APEX_CODE", "method"},
	KindSystemMethodEntry:  {"Method", "APEX_CODE", "system"},
	KindSystemMethodExit:   {"Method", "APEX_CODE", "system"},
	KindCodeUnitStarted:    {"CodeUnit", "APEX_CODE", "custom"},
	KindCodeUnitFinished:   {"CodeUnit", "APEX_CODE", "custom"},
	KindDMLBegin:           {"DML", "DB", "free"},
	KindDMLEnd:             {"DML", "DB", "free"},
	KindSOQLExecuteBegin:   {"SOQL", "DB", "free"},
	KindSOQLExecuteEnd:     {"SOQL", "DB", "free"},
	KindSOSLExecuteBegin:   {"SOSL", "DB", "free"},
	KindSOSLExecuteEnd:     {"SOSL", "DB", "free"},
	KindCalloutRequest:     {"Callout", "CALLOUT", "free"},
	KindCalloutResponse:    {"Callout", "CALLOUT", "free"},
	KindFlowElementBegin:   {"Flow", "FLOW", "custom"},
	KindFlowElementEnd:     {"Flow", "FLOW", "custom"},
	KindWFCriteriaBegin:    {"Workflow", "WORKFLOW", "custom"},
	KindWFRuleEvalBegin:    {"Workflow", "WORKFLOW", "custom"},
	KindValidationRule:     {"Validation", "VALIDATION", "custom"},
	KindVFApexCallStart:    {"Visualforce", "VISUALFORCE", "custom"},
	KindVFApexCallEnd:      {"Visualforce", "VISUALFORCE", "custom"},
	KindUserDebug:          {"UserDebug", "APEX_CODE", "free"},
	KindExceptionThrown:    {"Exception", "APEX_CODE", "free"},
	KindFatalError:         {"Exception", "APEX_CODE", "free"},
}

// lookupKindInfo builds the kindInfo for k from the tables above. It is
// computed on demand rather than declared as one giant literal because the
// parent/exit/pseudo-exit/accepts-text tables are independently meaningful
// to a reader (and independently testable).
func lookupKindInfo(k Kind) kindInfo {
	info := kindInfo{
		acceptsText: acceptsTextKinds[k],
	}

	if cat, ok := categoryTable[k]; ok {
		info.category, info.debugCategory, info.cpuType = cat[0], cat[1], cat[2]
	}

	if exits, ok := parentExitPairs[k]; ok {
		info.isParent = true
		info.exitTypes = exits
	}

	if k == KindEnteringManagedPkg {
		info.isParent = true
	}

	if pseudoExitKinds[k] {
		info.isParent = true
		info.isExit = true
		info.nextLineIsExit = true
	}

	if exitKinds[k] && !pseudoExitKinds[k] {
		info.isExit = true
	}

	if k == KindExceptionThrown || k == KindFatalError {
		info.discontinuity = true
	}

	return info
}

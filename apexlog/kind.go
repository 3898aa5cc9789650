// Package apexlog parses Salesforce Apex debug logs into a hierarchical call
// tree with per-node timing and governor-limit aggregates.
//
// The package exposes a single entry point, Parse, which consumes a raw log
// buffer and returns a Root. Parsing never fails outright: malformed lines,
// unknown event types, and truncated logs are recorded as diagnostics on the
// returned Root rather than surfaced as errors, because a debug log is never
// guaranteed to be complete.
package apexlog

// Kind identifies the type of a single Apex debug log event, the second
// pipe-delimited field of an event line (e.g. "METHOD_ENTRY"). The set of
// valid kinds is closed and is declared by the constants below; anything
// else encountered on a line is either continuation text or an unknown
// event type (see tokenizeLine).
type Kind string

// Kind constants. Names mirror the literal event-type tokens emitted by the
// Apex runtime. Only a subset of the ~150 tokens the runtime can emit are
// given bespoke behaviour here (§4.2 of the design); a token outside the
// knownKinds dispatch table (registry.go) is dropped by Parse with an
// "Unknown log line" parsing error.
const (
	KindUnknown Kind = "" // sentinel: continuation text, never a real event

	// Method / constructor call frames.
	KindMethodEntry            Kind = "METHOD_ENTRY"
	KindMethodExit             Kind = "METHOD_EXIT"
	KindConstructorEntry       Kind = "CONSTRUCTOR_ENTRY"
	KindConstructorExit        Kind = "CONSTRUCTOR_EXIT"
	KindSystemMethodEntry      Kind = "SYSTEM_METHOD_ENTRY"
	KindSystemMethodExit       Kind = "SYSTEM_METHOD_EXIT"
	KindSystemConstructorEntry Kind = "SYSTEM_CONSTRUCTOR_ENTRY"
	KindSystemConstructorExit  Kind = "SYSTEM_CONSTRUCTOR_EXIT"
	KindSystemModeEnter        Kind = "SYSTEM_MODE_ENTER"
	KindSystemModeExit         Kind = "SYSTEM_MODE_EXIT"

	// Code unit (trigger / class / flow wrapper) frames.
	KindCodeUnitStarted  Kind = "CODE_UNIT_STARTED"
	KindCodeUnitFinished Kind = "CODE_UNIT_FINISHED"
	KindExecutionStarted Kind = "EXECUTION_STARTED"
	KindExecutionFinish  Kind = "EXECUTION_FINISHED"
	KindEnteringManagedPkg Kind = "ENTERING_MANAGED_PKG"

	// DML / SOQL / SOSL / callout frames.
	KindDMLBegin         Kind = "DML_BEGIN"
	KindDMLEnd           Kind = "DML_END"
	KindSOQLExecuteBegin Kind = "SOQL_EXECUTE_BEGIN"
	KindSOQLExecuteEnd   Kind = "SOQL_EXECUTE_END"
	KindSOQLExecuteExplain Kind = "SOQL_EXECUTE_EXPLAIN"
	KindSOSLExecuteBegin Kind = "SOSL_EXECUTE_BEGIN"
	KindSOSLExecuteEnd   Kind = "SOSL_EXECUTE_END"
	KindQueryMoreBegin   Kind = "QUERY_MORE_BEGIN"
	KindQueryMoreEnd     Kind = "QUERY_MORE_END"
	KindCalloutRequest   Kind = "CALLOUT_REQUEST"
	KindCalloutResponse  Kind = "CALLOUT_RESPONSE"
	KindNamedCredentialRequest  Kind = "NAMED_CREDENTIAL_REQUEST"
	KindNamedCredentialResponse Kind = "NAMED_CREDENTIAL_RESPONSE"

	// Flow frames.
	KindFlowStartInterviewsBegin Kind = "FLOW_START_INTERVIEWS_BEGIN"
	KindFlowStartInterviewsEnd   Kind = "FLOW_START_INTERVIEWS_END"
	KindFlowStartInterviewsError Kind = "FLOW_START_INTERVIEWS_ERROR"
	KindFlowCreateInterviewBegin Kind = "FLOW_CREATE_INTERVIEW_BEGIN"
	KindFlowCreateInterviewEnd   Kind = "FLOW_CREATE_INTERVIEW_END"
	KindFlowElementBegin         Kind = "FLOW_ELEMENT_BEGIN"
	KindFlowElementEnd           Kind = "FLOW_ELEMENT_END"
	KindFlowElementError         Kind = "FLOW_ELEMENT_ERROR"
	KindFlowBulkElementBegin     Kind = "FLOW_BULK_ELEMENT_BEGIN"
	KindFlowBulkElementEnd       Kind = "FLOW_BULK_ELEMENT_END"
	KindFlowValueAssignment      Kind = "FLOW_VALUE_ASSIGNMENT"

	// Workflow (WF_*) frames, including pseudo-exits (§4.3).
	KindWFCriteriaBegin        Kind = "WF_CRITERIA_BEGIN"
	KindWFCriteriaEnd          Kind = "WF_CRITERIA_END"
	KindWFRuleNotEvaluated     Kind = "WF_RULE_NOT_EVALUATED"
	KindWFRuleEvalBegin        Kind = "WF_RULE_EVAL_BEGIN"
	KindWFRuleEvalEnd          Kind = "WF_RULE_EVAL_END"
	KindWFRuleFilter           Kind = "WF_RULE_FILTER"
	KindWFFormula              Kind = "WF_FORMULA"
	KindWFFieldUpdate          Kind = "WF_FIELD_UPDATE"
	KindWFEmailSent            Kind = "WF_EMAIL_SENT"
	KindWFEmailAlert           Kind = "WF_EMAIL_ALERT"
	KindWFApproval             Kind = "WF_APPROVAL"
	KindWFApprovalSubmit       Kind = "WF_APPROVAL_SUBMIT"
	KindWFEvalEntryCriteria    Kind = "WF_EVAL_ENTRY_CRITERIA"
	KindWFNextApprover         Kind = "WF_NEXT_APPROVER"
	KindWFProcessFound         Kind = "WF_PROCESS_FOUND"
	KindWFProcessNode          Kind = "WF_PROCESS_NODE"
	KindWFRuleInvocation       Kind = "WF_RULE_INVOCATION"
	KindWFAction               Kind = "WF_ACTION"
	KindWFSpoolActionBegin     Kind = "WF_SPOOL_ACTION_BEGIN"
	KindWFTimeTrigger          Kind = "WF_TIME_TRIGGER"
	KindWFFlowActionBegin      Kind = "WF_FLOW_ACTION_BEGIN"
	KindWFFlowActionEnd        Kind = "WF_FLOW_ACTION_END"
	KindWFFlowActionError      Kind = "WF_FLOW_ACTION_ERROR"
	KindWFFlowActionErrorDetail Kind = "WF_FLOW_ACTION_ERROR_DETAIL"

	// Validation rules.
	KindValidationRule    Kind = "VALIDATION_RULE"
	KindValidationFormula Kind = "VALIDATION_FORMULA"
	KindValidationError   Kind = "VALIDATION_ERROR"
	KindValidationPass    Kind = "VALIDATION_PASS"
	KindValidationFail    Kind = "VALIDATION_FAIL"

	// Visualforce.
	KindVFApexCallStart Kind = "VF_APEX_CALL_START"
	KindVFApexCallEnd   Kind = "VF_APEX_CALL_END"
	KindVFPageMessage   Kind = "VF_PAGE_MESSAGE"

	// Governor limits / profiling.
	KindLimitUsage                Kind = "LIMIT_USAGE"
	KindLimitUsageForNS           Kind = "LIMIT_USAGE_FOR_NS"
	KindCumulativeLimitUsage      Kind = "CUMULATIVE_LIMIT_USAGE"
	KindCumulativeLimitUsageEnd   Kind = "CUMULATIVE_LIMIT_USAGE_END"
	KindCumulativeProfilingBegin  Kind = "CUMULATIVE_PROFILING_BEGIN"
	KindCumulativeProfilingEnd    Kind = "CUMULATIVE_PROFILING_END"
	KindCumulativeProfiling       Kind = "CUMULATIVE_PROFILING"
	KindTestingLimits             Kind = "TESTING_LIMITS"

	// Variables, heap, debug statements.
	KindVariableAssignment     Kind = "VARIABLE_ASSIGNMENT"
	KindVariableScopeBegin     Kind = "VARIABLE_SCOPE_BEGIN"
	KindVariableScopeEnd       Kind = "VARIABLE_SCOPE_END"
	KindStatementExecute       Kind = "STATEMENT_EXECUTE"
	KindHeapAllocate           Kind = "HEAP_ALLOCATE"
	KindBulkHeapAllocate       Kind = "BULK_HEAP_ALLOCATE"
	KindStaticVariableList     Kind = "STATIC_VARIABLE_LIST"
	KindStackFrameVariableList Kind = "STACK_FRAME_VARIABLE_LIST"
	KindUserDebug              Kind = "USER_DEBUG"
	KindUserInfo               Kind = "USER_INFO"

	// Errors and exceptions.
	KindExceptionThrown Kind = "EXCEPTION_THROWN"
	KindFatalError      Kind = "FATAL_ERROR"

	// Email / push / misc side effects.
	KindEmailQueue                         Kind = "EMAIL_QUEUE"
	KindTotalEmailRecipientsQueued          Kind = "TOTAL_EMAIL_RECIPIENTS_QUEUED"
	KindPushNotificationSent                Kind = "PUSH_NOTIFICATION_SENT"
	KindPushNotificationNotEnabled          Kind = "PUSH_NOTIFICATION_NOT_ENABLED"
	KindPushNotificationInvalidApp          Kind = "PUSH_NOTIFICATION_INVALID_APP"
	KindPushNotificationInvalidNotification Kind = "PUSH_NOTIFICATION_INVALID_NOTIFICATION"
	KindSavepointSet                        Kind = "SAVEPOINT_SET"
	KindSavepointRollback                   Kind = "SAVEPOINT_ROLLBACK"
	KindDuplicateDetectionBegin             Kind = "DUPLICATE_DETECTION_BEGIN"
	KindDuplicateDetectionEnd               Kind = "DUPLICATE_DETECTION_END"
	KindDuplicateDetectionRuleInvocation    Kind = "DUPLICATE_DETECTION_RULE_INVOCATION"
	KindDuplicateDetectionSummary           Kind = "DUPLICATE_DETECTION_SUMMARY"
)

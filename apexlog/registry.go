package apexlog

// knownKinds is the event-factory's static dispatch table (§4.2): the
// closed set of type tokens the parser recognises. A type token not in this
// set produces a "Unknown log line" parsing error and the line is dropped
// (§7); anything already filtered out as non-event by tokenizeLine never
// reaches this check.
var knownKinds = buildKnownKinds()

func buildKnownKinds() map[Kind]bool {
	kinds := []Kind{
		KindMethodEntry, KindMethodExit,
		KindConstructorEntry, KindConstructorExit,
		KindSystemMethodEntry, KindSystemMethodExit,
		KindSystemConstructorEntry, KindSystemConstructorExit,
		KindSystemModeEnter, KindSystemModeExit,
		KindCodeUnitStarted, KindCodeUnitFinished,
		KindExecutionStarted, KindExecutionFinish,
		KindEnteringManagedPkg,
		KindDMLBegin, KindDMLEnd,
		KindSOQLExecuteBegin, KindSOQLExecuteEnd, KindSOQLExecuteExplain,
		KindSOSLExecuteBegin, KindSOSLExecuteEnd,
		KindQueryMoreBegin, KindQueryMoreEnd,
		KindCalloutRequest, KindCalloutResponse,
		KindNamedCredentialRequest, KindNamedCredentialResponse,
		KindFlowStartInterviewsBegin, KindFlowStartInterviewsEnd, KindFlowStartInterviewsError,
		KindFlowCreateInterviewBegin, KindFlowCreateInterviewEnd,
		KindFlowElementBegin, KindFlowElementEnd, KindFlowElementError,
		KindFlowBulkElementBegin, KindFlowBulkElementEnd,
		KindFlowValueAssignment,
		KindWFCriteriaBegin, KindWFCriteriaEnd, KindWFRuleNotEvaluated,
		KindWFRuleEvalBegin, KindWFRuleEvalEnd,
		KindWFRuleFilter, KindWFFormula,
		KindWFFieldUpdate, KindWFEmailSent, KindWFEmailAlert,
		KindWFApproval, KindWFApprovalSubmit, KindWFEvalEntryCriteria,
		KindWFNextApprover, KindWFProcessFound, KindWFProcessNode,
		KindWFRuleInvocation, KindWFAction, KindWFSpoolActionBegin,
		KindWFTimeTrigger,
		KindWFFlowActionBegin, KindWFFlowActionEnd,
		KindWFFlowActionError, KindWFFlowActionErrorDetail,
		KindValidationRule, KindValidationFormula, KindValidationError,
		KindValidationPass, KindValidationFail,
		KindVFApexCallStart, KindVFApexCallEnd, KindVFPageMessage,
		KindLimitUsage, KindLimitUsageForNS,
		KindCumulativeLimitUsage, KindCumulativeLimitUsageEnd,
		KindCumulativeProfilingBegin, KindCumulativeProfilingEnd, KindCumulativeProfiling,
		KindTestingLimits,
		KindVariableAssignment, KindVariableScopeBegin, KindVariableScopeEnd,
		KindStatementExecute, KindHeapAllocate, KindBulkHeapAllocate,
		KindStaticVariableList, KindStackFrameVariableList,
		KindUserDebug, KindUserInfo,
		KindExceptionThrown, KindFatalError,
		KindEmailQueue, KindTotalEmailRecipientsQueued,
		KindPushNotificationSent, KindPushNotificationNotEnabled,
		KindPushNotificationInvalidApp, KindPushNotificationInvalidNotification,
		KindSavepointSet, KindSavepointRollback,
		KindDuplicateDetectionBegin, KindDuplicateDetectionEnd,
		KindDuplicateDetectionRuleInvocation, KindDuplicateDetectionSummary,
	}

	set := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}

	return set
}
